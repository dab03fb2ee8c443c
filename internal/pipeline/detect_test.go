package pipeline

import "testing"

func TestDetectContractMail(t *testing.T) {
	res := DetectContractMail("Nouveau contrat Vega", "veuillez trouver le document", []string{"contrat.pdf"})
	if !res.IsContract || res.Reason != "rules_positive" {
		t.Fatalf("unexpected: %+v", res)
	}
}

func TestDetectContractMailNegative(t *testing.T) {
	res := DetectContractMail("Newsletter avril", "bonjour", nil)
	if res.IsContract || res.Reason != "rules_negative" {
		t.Fatalf("unexpected: %+v", res)
	}
}

func TestDetectContractMailAttachmentAlone(t *testing.T) {
	// A bare pdf without any keyword stays below the threshold.
	res := DetectContractMail("hello", "", []string{"scan.pdf"})
	if res.IsContract {
		t.Fatalf("unexpected: %+v", res)
	}
	res = DetectContractMail("contrat", "", []string{"scan.pdf"})
	if !res.IsContract {
		t.Fatalf("unexpected: %+v", res)
	}
}
