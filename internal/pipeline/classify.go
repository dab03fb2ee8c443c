package pipeline

import (
	"regexp"
	"strings"
	"unicode"
)

// LineClass tags one normalized text line. Noise suppresses every other tag:
// a noise line is never an address, name or code candidate.
type LineClass int

const (
	ClassPlain LineClass = iota
	ClassNoise
	ClassPersonLike
	ClassAddressLike
)

var companyMarkers = []string{
	" SA", " AG", " GmbH", " Srl", " SRL", " SAS", " SPA", " Inc", " SARL", " SNC", " Ltd",
}

var streetMarkers = []string{
	"strasse", "straße", "str.", "str ", "via ", "rue ", "weg", "allee", "platz",
	"chemin", "avenue", "bd ", "boulevard",
}

var (
	reURL        = regexp.MustCompile(`(?i)https?://|www\.`)
	reDigitsOnly = regexp.MustCompile(`^[\d\s.\-]+$`)
	reNumToken   = regexp.MustCompile(`^\d+[A-Za-z]?$`)
	reClientCode = regexp.MustCompile(`^\d{4,6}$`)
	rePostalCity = regexp.MustCompile(`^(\d{4})\s+(.+)$`)
	reCountry    = regexp.MustCompile(`(?i)^(schweiz|suisse|svizzera|switzerland|italia|france|deutschland|österreich)$`)
)

// Classify computes the tag of a single line. Pure; no state across lines.
func Classify(line string) LineClass {
	if isNoise(line) {
		return ClassNoise
	}
	if looksLikePerson(line) {
		return ClassPersonLike
	}
	if looksLikeAddress(line) {
		return ClassAddressLike
	}
	return ClassPlain
}

func isNoise(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.Contains(trimmed, "@") {
		return true
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "tel") || strings.HasPrefix(lower, "tél") {
		return true
	}
	if reURL.MatchString(trimmed) {
		return true
	}
	return reDigitsOnly.MatchString(trimmed)
}

// looksLikePerson accepts 2-4 tokens that all read like capitalized name
// parts, unless a company suffix marker appears anywhere in the line.
func looksLikePerson(line string) bool {
	for _, marker := range companyMarkers {
		if strings.Contains(line, marker) {
			return false
		}
	}
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-'
	})
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		if !isNameToken(tok) {
			return false
		}
	}
	return true
}

func isNameToken(tok string) bool {
	runes := []rune(tok)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsLower(r) || r == '\'' || r == '’' {
			continue
		}
		return false
	}
	return true
}

// looksLikeAddress needs both a bare or letter-suffixed number token and a
// street-type marker substring.
func looksLikeAddress(line string) bool {
	hasNumber := false
	for _, tok := range strings.Fields(line) {
		if reNumToken.MatchString(tok) {
			hasNumber = true
			break
		}
	}
	if !hasNumber {
		return false
	}
	lower := strings.ToLower(line)
	for _, marker := range streetMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// hasStreetMarker reports whether a single token carries a street marker,
// used when segmenting a one-line header into pseudo-lines. Token-level
// matching is stricter than the line check to avoid substrings like "via"
// inside ordinary words.
func hasStreetMarker(tok string) bool {
	lower := strings.ToLower(strings.Trim(tok, ".,"))
	switch lower {
	case "via", "rue", "bd", "chemin", "avenue", "boulevard", "str":
		return true
	}
	if strings.Contains(lower, "strasse") || strings.Contains(lower, "straße") {
		return true
	}
	return strings.HasSuffix(lower, "weg") || strings.HasSuffix(lower, "allee") || strings.HasSuffix(lower, "platz")
}
