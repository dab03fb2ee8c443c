package mail

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
)

type Attachment struct {
	Name    string
	Content []byte
}

// Envelope is the part of an incoming message the contract pipeline cares
// about: the subject, a plain-text body and the PDF attachments.
type Envelope struct {
	Subject     string
	BodyText    string
	Attachments []Attachment
}

// ParseEnvelope reads a raw RFC 5322 message. HTML-only bodies are flattened
// to text so keyword detection works on them too.
func ParseEnvelope(raw []byte) (Envelope, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return Envelope{}, err
	}

	out := Envelope{Subject: env.GetHeader("Subject")}

	out.BodyText = env.Text
	if strings.TrimSpace(out.BodyText) == "" && env.HTML != "" {
		out.BodyText = htmlToText(env.HTML)
	}

	for _, att := range env.Attachments {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = "attachment"
		}
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			continue
		}
		out.Attachments = append(out.Attachments, Attachment{Name: name, Content: att.Content})
	}

	return out, nil
}

// Headers pulls the routing headers the journal keys on from a raw message.
// Connectors call this instead of fetching header metadata separately; a
// message that cannot be parsed yields empty values and the caller falls
// back to provider identifiers.
func Headers(raw []byte) (messageID, subject, from string) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return "", "", ""
	}
	return env.GetHeader("Message-Id"), env.GetHeader("Subject"), env.GetHeader("From")
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
