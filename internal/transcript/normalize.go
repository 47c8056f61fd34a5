package transcript

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the comparison form of a sentence: NFC composed, with
// whitespace runs collapsed to a single space and the ends trimmed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
