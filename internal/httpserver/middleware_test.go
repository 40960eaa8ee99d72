package httpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "sensitive key",
			body: `{"ssn":"123-45-6789","fullName":"Jane"}`,
			want: `{"fullName":"Jane","ssn":"[SECRET]"}`,
		},
		{
			name: "tool call naming a sensitive field",
			body: `{"fieldId":"phoneNumber","value":"5551234567"}`,
			want: `{"fieldId":"phoneNumber","value":"[SECRET]"}`,
		},
		{
			name: "harmless tool call",
			body: `{"fieldId":"fullName","value":"Jane"}`,
			want: `{"fieldId":"fullName","value":"Jane"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, sanitizeRequestBody([]byte(tt.body)))
		})
	}
}

func TestSanitizeRequestBody_NonJSON(t *testing.T) {
	assert.Equal(t, "[non-JSON body]", sanitizeRequestBody([]byte("hello")))
}
