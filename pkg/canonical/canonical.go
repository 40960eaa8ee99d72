// Package canonical normalizes raw answer strings into the fixed textual
// format expected for a field's type. Every function is pure and idempotent:
// re-canonicalizing a canonical value returns it unchanged.
package canonical

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-voiceform/pkg/model"
)

// ErrUnparseableValue reports a date-like value that matched no recognized
// shape. It is informational: Canonicalize still returns the raw input.
var ErrUnparseableValue = errors.New("canonical: unparseable value")

// Canonicalize normalizes raw for field. Date-like fields become ISO dates,
// phone fields become (XXX) XXX-XXXX and SSN fields become XXX-XX-XXXX.
// Other types, including select and radio, are returned verbatim without
// checking the option set. When a date-like value cannot be parsed the raw
// value is returned together with an error wrapping ErrUnparseableValue.
func Canonicalize(field model.FieldDescriptor, raw string) (string, error) {
	switch {
	case field.Type == model.FieldTypePhone:
		return Phone(raw), nil
	case field.Type == model.FieldTypeSSN:
		return SSN(raw), nil
	case field.IsDateLike():
		out, ok := Date(raw)
		if !ok {
			return raw, fmt.Errorf("%w: %q for %s", ErrUnparseableValue, raw, field.ID)
		}
		return out, nil
	default:
		return raw, nil
	}
}

// Redact masks values that must not appear in logs.
func Redact(field model.FieldDescriptor, value string) string {
	switch field.Type {
	case model.FieldTypeSSN:
		d := digits(value, 9)
		if len(d) < 4 {
			return "***-**-****"
		}
		return "***-**-" + d[len(d)-4:]
	case model.FieldTypePhone:
		d := digits(value, 10)
		if len(d) < 4 {
			return "(***) ***-****"
		}
		return "(***) ***-" + d[len(d)-4:]
	default:
		return value
	}
}

func digits(value string, limit int) string {
	out := make([]byte, 0, limit)
	for i := 0; i < len(value) && len(out) < limit; i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}
