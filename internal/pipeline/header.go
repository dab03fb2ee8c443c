package pipeline

import "strings"

// HeaderWindow returns the leading maxWords whitespace-delimited tokens of
// the document text, joined by single spaces. The client identity block of a
// Vega contract sits inside this window.
func HeaderWindow(text string, maxWords int) string {
	fields := strings.Fields(text)
	if maxWords > 0 && len(fields) > maxWords {
		fields = fields[:maxWords]
	}
	return strings.Join(fields, " ")
}
