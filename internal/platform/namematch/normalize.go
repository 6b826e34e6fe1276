// Package namematch joins team names across providers that disagree on
// prefixes, diacritics and punctuation.
package namematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes name (NFKD), drops combining marks in U+0300..U+036F,
// collapses every run of characters outside [a-z0-9] into one space, trims
// and lowercases.
func Normalize(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingSpace := false
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036F {
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// Equal compares two names after normalization. Empty names never match.
func Equal(a, b string) bool {
	na := Normalize(a)
	return na != "" && na == Normalize(b)
}

// containsWords reports whether needle occurs in haystack on word
// boundaries. Both inputs must already be normalized.
func containsWords(haystack, needle string) bool {
	if needle == "" || haystack == "" {
		return false
	}
	if haystack == needle {
		return true
	}
	padded := " " + haystack + " "
	return strings.Contains(padded, " "+needle+" ")
}
