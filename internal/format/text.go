package format

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Text renders raw string bytes for display, replacing ill-formed UTF-8 with
// U+FFFD. Comparisons should use the raw bytes instead.
func Text(b []byte) string {
	out, _, err := transform.Bytes(runes.ReplaceIllFormed(), b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
