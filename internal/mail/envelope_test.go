package mail

import (
	"strings"
	"testing"
)

const testMessage = "Subject: Nouveau contrat Vega\r\n" +
	"From: partner@example.ch\r\n" +
	"Message-Id: <m1@example.ch>\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"b1\"\r\n" +
	"\r\n" +
	"--b1\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Veuillez trouver le contrat ci-joint.\r\n" +
	"--b1\r\n" +
	"Content-Type: application/pdf; name=\"contrat.pdf\"\r\n" +
	"Content-Disposition: attachment; filename=\"contrat.pdf\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"JVBERi0xLjQK\r\n" +
	"--b1\r\n" +
	"Content-Type: image/png; name=\"logo.png\"\r\n" +
	"Content-Disposition: attachment; filename=\"logo.png\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"iVBORw0KGgo=\r\n" +
	"--b1--\r\n"

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(testMessage))
	if err != nil {
		t.Fatal(err)
	}
	if env.Subject != "Nouveau contrat Vega" {
		t.Fatalf("subject=%q", env.Subject)
	}
	if !strings.Contains(env.BodyText, "contrat ci-joint") {
		t.Fatalf("body=%q", env.BodyText)
	}
	// Only the pdf survives; the png is dropped.
	if len(env.Attachments) != 1 || env.Attachments[0].Name != "contrat.pdf" {
		t.Fatalf("attachments=%+v", env.Attachments)
	}
	if string(env.Attachments[0].Content) != "%PDF-1.4\n" {
		t.Fatalf("content=%q", env.Attachments[0].Content)
	}
}

func TestHeaders(t *testing.T) {
	messageID, subject, from := Headers([]byte(testMessage))
	if messageID != "<m1@example.ch>" {
		t.Fatalf("messageID=%q", messageID)
	}
	if subject != "Nouveau contrat Vega" || from != "partner@example.ch" {
		t.Fatalf("subject=%q from=%q", subject, from)
	}
}

func TestHeadersUnparseable(t *testing.T) {
	messageID, subject, from := Headers([]byte("\x00\x01"))
	if messageID != "" || subject != "" || from != "" {
		t.Fatalf("got %q %q %q", messageID, subject, from)
	}
}

func TestParseEnvelopeHTMLOnly(t *testing.T) {
	msg := "Subject: Contrat\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><head><style>p{color:red}</style></head>" +
		"<body><p>Bonjour <b>Vega</b></p><script>alert(1)</script></body></html>\r\n"

	env, err := ParseEnvelope([]byte(msg))
	if err != nil {
		t.Fatal(err)
	}
	if env.BodyText != "Bonjour Vega" {
		t.Fatalf("body=%q", env.BodyText)
	}
}
