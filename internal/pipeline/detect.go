package pipeline

import "strings"

type DetectResult struct {
	IsContract bool
	Score      float64
	Reason     string
}

var contractKeywords = []string{"contrat", "contratto", "vertrag", "contract", "vega", "distributeur", "automat"}

// DetectContractMail scores whether an incoming message is a contract
// submission worth analysing. Pure keyword/attachment rules, no model call.
func DetectContractMail(subject, bodyText string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	bodyText = strings.ToLower(bodyText)

	score := 0.0
	for _, kw := range contractKeywords {
		if strings.Contains(subject, kw) {
			score += 0.25
		}
		if strings.Contains(bodyText, kw) {
			score += 0.1
		}
	}

	for _, name := range attachmentNames {
		if strings.HasSuffix(strings.ToLower(name), ".pdf") {
			score += 0.4
			break
		}
	}

	if score > 1 {
		score = 1
	}

	isContract := score >= 0.45
	reason := "rules_negative"
	if isContract {
		reason = "rules_positive"
	}
	return DetectResult{IsContract: isContract, Score: score, Reason: reason}
}
