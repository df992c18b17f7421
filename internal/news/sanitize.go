package news

import "strings"

// Sanitize strips control characters and collapses runs of whitespace
// into single spaces. The result is trimmed, and sanitizing an already
// sanitized string returns it unchanged.
func Sanitize(in string) string {
	if in == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(in))
	for _, r := range in {
		if r < 0x20 || r == 0x7F {
			// Whitespace controls become separators, the rest vanish.
			if r == '\n' || r == '\r' || r == '\t' {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Truncate cuts s to at most max runes, appending an ellipsis when it
// was cut. Applied once, after Sanitize.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "..."
}
