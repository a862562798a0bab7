package value

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText brings text to Unicode NFC and trims surrounding whitespace.
// Every categorical value is normalized on entry, whether it comes from a
// catalog file, the store or a query, so canonically equivalent spellings
// compare equal.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
