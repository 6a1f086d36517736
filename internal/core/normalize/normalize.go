// Package normalize cleans raw text fields read from input files before they are matched or stored
// Pipeline order
// 1 drop control bytes and invalid UTF-8
// 2 Unicode NFKC normalization
// 3 remove format chars (zero width joiners, BOM)
// 4 width fold fullwidth to ASCII
// 5 collapse whitespace runs to a single space and trim
// Case is preserved; callers decide whether matching is case sensitive
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKC,
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// Field returns the cleaned form of one raw cell
func Field(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	if isPlainASCII(s) {
		return collapse(s)
	}

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		ns = s
	}
	return collapse(ns)
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// collapse turns any whitespace run into one ASCII space and trims the edges
func collapse(s string) string {
	if s == "" {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
