package pipeline

import (
	"strings"

	"vega/internal"
	"vega/internal/util"
)

// ParseClientBlock runs the heuristic client-block scan over extracted
// contract text. Best effort: fields stay nil when the layout does not
// match the positional rules; only the first client block is parsed.
func ParseClientBlock(text string) internal.ClientRecord {
	lines := splitLines(text)
	if len(lines) == 1 {
		lines = segmentFlat(lines[0])
	}
	rec := primaryScan(lines)
	if rec.ClientName == nil {
		secondaryScan(lines, &rec)
	}
	return rec
}

// splitLines collapses whitespace per line and drops blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// primaryScan walks forward from the first 4-6 digit code line. When no code
// line exists the scan still runs from the top and may set the other fields.
func primaryScan(lines []string) internal.ClientRecord {
	var rec internal.ClientRecord

	i := 0
	for j, line := range lines {
		if reClientCode.MatchString(line) {
			rec.ClientCode = util.StringPtr(line)
			i = j + 1
			break
		}
	}

	for i < len(lines) && Classify(lines[i]) == ClassNoise {
		i++
	}
	if i >= len(lines) {
		return rec
	}

	// A person-like line here means the name is undetermined; the secondary
	// scan takes over.
	if Classify(lines[i]) == ClassPersonLike {
		return rec
	}
	rec.ClientName = util.StringPtr(lines[i])
	i++

	for ; i < len(lines); i++ {
		switch Classify(lines[i]) {
		case ClassPersonLike:
			if rec.ContactName == nil {
				rec.ContactName = util.StringPtr(lines[i])
			}
		case ClassAddressLike:
			rec.Address = util.StringPtr(lines[i])
			fillPostalCityCountry(lines, i+1, &rec)
			return rec
		}
	}
	return rec
}

func fillPostalCityCountry(lines []string, i int, rec *internal.ClientRecord) {
	if i >= len(lines) {
		return
	}
	m := rePostalCity.FindStringSubmatch(lines[i])
	if m == nil {
		return
	}
	rec.PostalCode = util.StringPtr(m[1])
	rec.City = util.StringPtr(strings.TrimSpace(m[2]))
	if i+1 < len(lines) && reCountry.MatchString(lines[i+1]) {
		rec.Country = util.StringPtr(lines[i+1])
	}
}

// secondaryScan anchors on the first postal-code line instead of the client
// code. Runs only when the primary scan left the client name unset.
func secondaryScan(lines []string, rec *internal.ClientRecord) {
	for i, line := range lines {
		m := rePostalCity.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		rec.PostalCode = util.StringPtr(m[1])
		rec.City = util.StringPtr(strings.TrimSpace(m[2]))
		if i >= 1 {
			rec.Address = util.StringPtr(lines[i-1])
		}
		if i >= 2 {
			if class := Classify(lines[i-2]); class != ClassPersonLike && class != ClassNoise {
				rec.ClientName = util.StringPtr(lines[i-2])
			}
		}
		if i+1 < len(lines) && reCountry.MatchString(lines[i+1]) {
			rec.Country = util.StringPtr(lines[i+1])
		}
		return
	}
}

// segmentFlat cuts a single space-joined header line into the pseudo-lines
// the line scan expects: code token, client name, contact, address run,
// postal+city, country. The OCR and text-layer paths keep real line breaks;
// this path exists because the header window joins tokens with spaces.
func segmentFlat(line string) []string {
	tokens := strings.Fields(line)
	if len(tokens) < 2 {
		return []string{line}
	}

	out := make([]string, 0, 6)

	codeIdx := -1
	for j, tok := range tokens {
		if !reClientCode.MatchString(tok) {
			continue
		}
		// A bare 4-digit token right after a house number is the postal
		// code, not the client code.
		if j > 0 && len(tok) == 4 && reNumToken.MatchString(tokens[j-1]) {
			continue
		}
		codeIdx = j
		break
	}
	rest := tokens
	if codeIdx >= 0 {
		if codeIdx > 0 {
			out = append(out, strings.Join(tokens[:codeIdx], " "))
		}
		out = append(out, tokens[codeIdx])
		rest = tokens[codeIdx+1:]
	}
	if len(rest) == 0 {
		return out
	}

	street := -1
	for j, tok := range rest {
		if hasStreetMarker(tok) {
			street = j
			break
		}
	}
	if street < 0 {
		return append(out, strings.Join(rest, " "))
	}

	addrStart := street
	if addrStart > 0 && reNumToken.MatchString(rest[addrStart-1]) && len(rest[addrStart-1]) != 4 {
		addrStart--
	}
	addrEnd := street
	for j := street + 1; j < len(rest); j++ {
		if !reNumToken.MatchString(rest[j]) {
			addrEnd = j - 1
			break
		}
		if len(rest[j]) == 4 && reClientCode.MatchString(rest[j]) {
			addrEnd = j - 1
			break
		}
		addrEnd = j
	}
	if addrEnd < addrStart {
		addrEnd = street
	}

	head := rest[:addrStart]
	if len(head) > 0 {
		contactStart := -1
		for k := 2; k <= 4 && k < len(head); k++ {
			if looksLikePerson(strings.Join(head[len(head)-k:], " ")) {
				contactStart = len(head) - k
				break
			}
		}
		if contactStart > 0 {
			out = append(out, strings.Join(head[:contactStart], " "))
			out = append(out, strings.Join(head[contactStart:], " "))
		} else {
			out = append(out, strings.Join(head, " "))
		}
	}

	out = append(out, strings.Join(rest[addrStart:addrEnd+1], " "))

	tail := rest[addrEnd+1:]
	if len(tail) == 0 {
		return out
	}
	if reClientCode.MatchString(tail[0]) && len(tail[0]) == 4 {
		cityEnd := len(tail)
		for j := 1; j < len(tail); j++ {
			if reCountry.MatchString(tail[j]) {
				cityEnd = j
				break
			}
		}
		out = append(out, strings.Join(tail[:cityEnd], " "))
		if cityEnd < len(tail) {
			out = append(out, strings.Join(tail[cityEnd:], " "))
		}
		return out
	}
	return append(out, strings.Join(tail, " "))
}
