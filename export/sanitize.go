package export

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Sanitize strips markup and non-essential control characters from model text.
// It does not restructure the content. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = stripControl(s)
	// Decoding entities can surface new tags, so iterate to a fixed point.
	// Every changing round shortens the text, so len(s)+1 rounds always suffice.
	for rounds := len(s) + 1; rounds > 0; rounds-- {
		next := stripControl(html.UnescapeString(strict.Sanitize(s)))
		if next == s {
			break
		}
		s = next
	}
	return s
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}
