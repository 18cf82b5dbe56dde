package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics and turns punctuation into
// spaces, so "Κολωνάκι, Αθήνα" becomes "κολωνακι  αθηνα".
//
// Invalid UTF-8 decodes to U+FFFD, which is a symbol and so also becomes a
// space. A query made only of invalid bytes therefore has no tokens and
// filters nothing, like an empty one.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			return ' '
		case r == 'ς':
			// final sigma, so "Αθήνας" and "αθηνασ" agree
			return 'σ'
		}
		return unicode.ToLower(r)
	}, stripped)
}

// Tokens splits the normalized form of s into words.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// TokenMatch reports whether every word of query appears inside some word of
// target. Word order, case, accents and punctuation don't matter. An empty
// query matches anything.
func TokenMatch(query, target string) bool {
	want := Tokens(query)
	if len(want) == 0 {
		return true
	}
	have := Tokens(target)

	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.Contains(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
