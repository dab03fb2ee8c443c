package mail

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"vega/internal"
	"vega/internal/storage"
)

type stubConnector struct {
	msgs []internal.ContractMail
}

func (c stubConnector) FetchInbox(_ string, _ int) ([]internal.ContractMail, error) {
	return c.msgs, nil
}

func TestFetchAndStore(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	raw := []byte(testMessage)
	conn := stubConnector{msgs: []internal.ContractMail{{
		Provider:   "imap",
		MessageID:  "<m1@example.ch>",
		Subject:    "Nouveau contrat Vega",
		From:       "partner@example.ch",
		ReceivedAt: "2026-01-05T09:00:00Z",
		Raw:        raw,
	}}}

	rawDir := filepath.Join(dir, "raw")
	svc := NewFetchService(db, rawDir, conn)
	result, err := svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 1 || result.Stored != 1 {
		t.Fatalf("result=%+v", result)
	}

	hash := sha256.Sum256(raw)
	rawPath := filepath.Join(rawDir, hex.EncodeToString(hash[:])+".eml")
	if _, err := os.Stat(rawPath); err != nil {
		t.Fatalf("raw file: %v", err)
	}

	row, err := db.MustContractByProviderMessageID("imap", "<m1@example.ch>")
	if err != nil {
		t.Fatal(err)
	}
	if row.Status != "fetched" || row.RawRef != rawPath {
		t.Fatalf("row=%+v", row)
	}
}

func TestFetchAndStoreSkipsWithoutPDF(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	plain := "Subject: Newsletter\r\nFrom: news@example.ch\r\n\r\nbonjour\r\n"
	conn := stubConnector{msgs: []internal.ContractMail{{
		Provider:   "imap",
		MessageID:  "<news@example.ch>",
		Subject:    "Newsletter",
		From:       "news@example.ch",
		ReceivedAt: "2026-01-05T09:00:00Z",
		Raw:        []byte(plain),
	}}}

	svc := NewFetchService(db, filepath.Join(dir, "raw"), conn)
	result, err := svc.FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 1 || result.Stored != 0 || result.Skipped != 1 {
		t.Fatalf("result=%+v", result)
	}

	row, err := db.GetContractByProviderMessageID("imap", "<news@example.ch>")
	if err != nil {
		t.Fatal(err)
	}
	if row != nil {
		t.Fatalf("stored anyway: %+v", row)
	}
}
