package canonical

// SSN masks raw as XXX-XX-XXXX, keeping at most nine digits. Partial input
// is masked progressively: "123" stays "123", "1234" becomes "123-4".
func SSN(raw string) string {
	d := digits(raw, 9)
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 5:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:5] + "-" + d[5:]
	}
}

// SSNIncremental applies one keystroke to an already masked value, the way
// an input box re-masks on every change.
func SSNIncremental(masked string, keystroke string) string {
	return SSN(masked + keystroke)
}
