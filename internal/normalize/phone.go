package normalize

import (
	"strings"

	"golang.org/x/text/width"
)

// Phone reduces a raw phone value to its canonical digits-only form.
// Full-width digits are folded first; spaces, parentheses, and hyphens are
// dropped. A value containing no digits normalizes to the empty string.
func Phone(raw string) string {
	folded := width.Fold.String(strings.TrimSpace(raw))

	var b strings.Builder
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
