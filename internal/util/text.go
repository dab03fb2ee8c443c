package util

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	reNonAllowed = regexp.MustCompile(`[^a-z0-9 +&-]`)
	reSpaces     = regexp.MustCompile(`\s+`)
	ampPlusRepl  = strings.NewReplacer("&", " ", "+", " ")
)

// NormalizeName folds a client name down to the canonical form used for
// every reference-table comparison: "&" and "+" become spaces, diacritics
// are stripped to base ASCII letters, everything is lowercased, remaining
// punctuation folds to spaces and runs of whitespace collapse. Idempotent.
func NormalizeName(input string) string {
	s := ampPlusRepl.Replace(input)
	s = StripDiacritics(s)
	s = strings.ToLower(s)
	s = reNonAllowed.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripDiacritics decomposes the input and keeps only base ASCII runes.
// Characters without an ASCII decomposition are dropped.
func StripDiacritics(input string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(input) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeCode trims a key cell and collapses float-formatted integer codes
// ("27106.0" as produced by spreadsheet exports) back to their digit form.
func NormalizeCode(input string) string {
	s := strings.TrimSpace(input)
	if !strings.Contains(s, ".") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// CoerceInt parses a model-code cell into an integer, tolerating float
// formatting. Missing or non-numeric cells report ok=false.
func CoerceInt(input string) (int, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func StringPtr(v string) *string { return &v }

func IntPtr(v int) *int { return &v }
