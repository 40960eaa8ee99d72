package canonical

import "strings"

// Phone formats the first ten digits of raw as (XXX) XXX-XXXX. Shorter input
// yields a partially filled string such as "(555) 12"; input without digits
// is returned unchanged.
func Phone(raw string) string {
	d := digits(raw, 10)
	if d == "" {
		return raw
	}

	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(d[:min(3, len(d))])
	if len(d) >= 3 {
		b.WriteByte(')')
	}
	if len(d) > 3 {
		b.WriteByte(' ')
		b.WriteString(d[3:min(6, len(d))])
	}
	if len(d) > 6 {
		b.WriteByte('-')
		b.WriteString(d[6:])
	}
	return b.String()
}
