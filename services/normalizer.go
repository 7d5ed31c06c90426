package services

import "strings"

// Corporate/legal suffixes stripped from the tail of merchant labels before
// comparison. Longer forms first so "s.a.s." wins over "s.a.".
var merchantSuffixes = []string{
	"s.a.s.", "s.a.s", "s.r.l.", "s.r.l", "s.a.", "s.a", "sas", "srl", "sa",
	"ltda.", "ltda", "inc.", "inc", "llc", "ltd", "co.", "co",
	"store", "online", "oficial",
}

// NormalizeMerchant canonicalizes a free-text merchant label for comparison:
// lowercase, trim, strip trailing corporate suffixes, drop everything that is
// not a letter, digit or space, collapse whitespace. Stripping punctuation can
// expose a new trailing suffix, so the pass repeats until stable.
func NormalizeMerchant(raw string) string {
	s := normalizePass(raw)
	for {
		next := normalizePass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizePass(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range merchantSuffixes {
			if strings.HasSuffix(s, suffix) && len(s) > len(suffix) && endsAtWordBoundary(s, len(s)-len(suffix)) {
				s = strings.TrimSpace(s[:len(s)-len(suffix)])
				stripped = true
				break
			}
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace && b.Len() > 0 {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// endsAtWordBoundary reports whether the suffix starting at idx is its own
// trailing word, so "sample" does not lose its "le".
func endsAtWordBoundary(s string, idx int) bool {
	if idx <= 0 {
		return false
	}
	c := s[idx-1]
	return c == ' ' || c == '.' || c == ',' || c == '-'
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
		(r >= 'à' && r <= 'ÿ' && r != '÷')
}
