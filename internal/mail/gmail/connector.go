package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"vega/internal"
	"vega/internal/config"
	"vega/internal/mail"
)

// contractQuery narrows the mailbox listing server-side: only messages that
// can carry a contract PDF are worth downloading.
const contractQuery = "has:attachment filename:pdf"

type Connector struct {
	service *gmail.Service
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(context.Background(), option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{service: svc}, nil
}

// FetchInbox downloads candidate contract messages in raw form. One API call
// per message; the routing headers come from the raw bytes, the receive time
// from the Gmail internal date.
func (c *Connector) FetchInbox(label string, max int) ([]internal.ContractMail, error) {
	listResp, err := c.service.Users.Messages.List("me").
		LabelIds(label).Q(contractQuery).MaxResults(int64(max)).Do()
	if err != nil {
		return nil, err
	}

	out := make([]internal.ContractMail, 0, len(listResp.Messages))
	for _, msgRef := range listResp.Messages {
		if msgRef.Id == "" {
			continue
		}

		msg, err := c.service.Users.Messages.Get("me", msgRef.Id).Format("raw").Do()
		if err != nil {
			return nil, err
		}
		if msg.Raw == "" {
			continue
		}
		rawBytes, err := decodeBase64URL(msg.Raw)
		if err != nil {
			return nil, err
		}

		messageID, subject, from := mail.Headers(rawBytes)
		if messageID == "" {
			messageID = msgRef.Id
		}

		received := time.Now().UTC().Format(time.RFC3339)
		if msg.InternalDate > 0 {
			received = time.UnixMilli(msg.InternalDate).UTC().Format(time.RFC3339)
		}

		out = append(out, internal.ContractMail{
			Provider:   "gmail",
			MessageID:  messageID,
			Subject:    subject,
			From:       from,
			ReceivedAt: received,
			Raw:        rawBytes,
		})
	}

	return out, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}
