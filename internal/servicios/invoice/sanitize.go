package invoice

import (
	"math"
	"strconv"
	"strings"
)

// sanitizeText normalizes human-supplied text before it reaches the page:
// line endings become \n, tabs become spaces, unusual line separators
// collapse to newlines and remaining control characters are dropped. This is
// about characters that break the renderer, not markup — the request-level
// sanitizer already handled that.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u2028", "\n")
	s = strings.ReplaceAll(s, "\u2029", "\n")
	s = strings.ReplaceAll(s, "\t", " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatPesos renders a monetary value as a Colombian peso string with no
// decimals and dot-grouped thousands: 1234567 -> "$ 1.234.567".
func formatPesos(v float64) string {
	n := int64(math.Round(v))
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return "$ " + sign + strings.Join(groups, ".")
}
