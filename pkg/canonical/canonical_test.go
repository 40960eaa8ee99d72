package canonical_test

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-voiceform/pkg/canonical"
	"github.com/goliatone/go-voiceform/pkg/model"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "iso passthrough", input: "1990-03-04", want: "1990-03-04", wantOK: true},
		{name: "us padded", input: "03/04/1990", want: "1990-03-04", wantOK: true},
		{name: "us unpadded", input: "3/4/1990", want: "1990-03-04", wantOK: true},
		{name: "long month", input: "March 4, 1990", want: "1990-03-04", wantOK: true},
		{name: "short month", input: "Mar 4, 1990", want: "1990-03-04", wantOK: true},
		{name: "surrounding space", input: "  3/4/1990 ", want: "1990-03-04", wantOK: true},
		{name: "invalid calendar date still reordered", input: "13/45/1990", want: "1990-13-45", wantOK: true},
		{name: "free text unchanged", input: "last spring", want: "last spring", wantOK: false},
		{name: "month and year unchanged", input: "03/2015", want: "03/2015", wantOK: false},
		{name: "empty", input: "", want: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := canonical.Date(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"555-123-4567", "(555) 123-4567"},
		{"5551234567", "(555) 123-4567"},
		{"(555) 123-4567", "(555) 123-4567"},
		{"555.123.4567 ext 89", "(555) 123-4567"},
		{"55512", "(555) 12"},
		{"555", "(555)"},
		{"55", "(55"},
		{"no digits", "no digits"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonical.Phone(tt.input), "input %q", tt.input)
	}
}

func TestPhone_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		d := fmt.Sprintf("%010d", rng.Int63n(1e10))
		once := canonical.Phone(d)
		require.Equal(t, once, canonical.Phone(once), "digits %s", d)
	}
}

func TestSSN(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"123456789", "123-45-6789"},
		{"123-45-6789", "123-45-6789"},
		{"123 45 6789", "123-45-6789"},
		{"1234567890123", "123-45-6789"},
		{"1234", "123-4"},
		{"12345", "123-45"},
		{"123456", "123-45-6"},
		{"12", "12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, canonical.SSN(tt.input), "input %q", tt.input)
	}
}

func TestSSN_IncrementalMatchesWhole(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 300; i++ {
		n := rng.Intn(14)
		var sb strings.Builder
		for j := 0; j < n; j++ {
			sb.WriteByte(byte('0' + rng.Intn(10)))
		}
		full := sb.String()

		masked := ""
		for _, r := range full {
			masked = canonical.SSNIncremental(masked, string(r))
		}
		require.Equal(t, canonical.SSN(full), masked, "digits %q", full)
		require.Equal(t, masked, canonical.SSN(masked), "idempotence for %q", masked)
	}
}

func TestCanonicalize_DispatchesByType(t *testing.T) {
	tests := []struct {
		name    string
		field   model.FieldDescriptor
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "date field",
			field: model.FieldDescriptor{ID: "dateOfBirth", Type: model.FieldTypeDate},
			input: "03/04/1990",
			want:  "1990-03-04",
		},
		{
			name:  "dob id on text field",
			field: model.FieldDescriptor{ID: "primaryBeneficiaryDOB", Type: model.FieldTypeText},
			input: "12/25/1985",
			want:  "1985-12-25",
		},
		{
			name:    "unparseable date keeps raw",
			field:   model.FieldDescriptor{ID: "dateOfBirth", Type: model.FieldTypeDate},
			input:   "the day after",
			want:    "the day after",
			wantErr: canonical.ErrUnparseableValue,
		},
		{
			name:  "phone",
			field: model.FieldDescriptor{ID: "workPhone", Type: model.FieldTypePhone},
			input: "555 123 4567",
			want:  "(555) 123-4567",
		},
		{
			name:  "ssn",
			field: model.FieldDescriptor{ID: "ssn", Type: model.FieldTypeSSN},
			input: "123456789",
			want:  "123-45-6789",
		},
		{
			name:  "select outside options is kept",
			field: model.FieldDescriptor{ID: "gender", Type: model.FieldTypeRadio, Options: []string{"Male", "Female"}},
			input: "Prefer not to say",
			want:  "Prefer not to say",
		},
		{
			name:  "text verbatim",
			field: model.FieldDescriptor{ID: "fullName", Type: model.FieldTypeText},
			input: " Jane Doe ",
			want:  " Jane Doe ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canonical.Canonicalize(tt.field, tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				return
			}
			require.NoError(t, err)

			again, err := canonical.Canonicalize(tt.field, got)
			require.NoError(t, err)
			assert.Equal(t, got, again, "canonicalize must be idempotent")
		})
	}
}

func TestRedact(t *testing.T) {
	ssn := model.FieldDescriptor{ID: "ssn", Type: model.FieldTypeSSN}
	phone := model.FieldDescriptor{ID: "phoneNumber", Type: model.FieldTypePhone}
	text := model.FieldDescriptor{ID: "fullName", Type: model.FieldTypeText}

	assert.Equal(t, "***-**-6789", canonical.Redact(ssn, "123-45-6789"))
	assert.Equal(t, "(***) ***-4567", canonical.Redact(phone, "(555) 123-4567"))
	assert.Equal(t, "***-**-****", canonical.Redact(ssn, "12"))
	assert.Equal(t, "Jane", canonical.Redact(text, "Jane"))
}
