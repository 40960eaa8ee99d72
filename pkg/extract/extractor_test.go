package extract_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-voiceform/pkg/extract"
)

func values(candidates []extract.Candidate) map[string]string {
	out := make(map[string]string, len(candidates))
	for _, c := range candidates {
		out[c.TargetFieldID] = c.RawValue
	}
	return out
}

func TestUtterance(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      map[string]string
	}{
		{
			name:      "name and email",
			utterance: "my name is Jane Doe and my email is jane@x.com",
			want:      map[string]string{"fullName": "Jane Doe", "emailAddress": "jane@x.com"},
		},
		{
			name:      "phone suppresses ssn",
			utterance: "call me at 555-123-4567",
			want:      map[string]string{"phoneNumber": "555-123-4567"},
		},
		{
			name:      "ssn alone",
			utterance: "my social is 123-45-6789",
			want:      map[string]string{"ssn": "123-45-6789"},
		},
		{
			name:      "date of birth",
			utterance: "I was born on 3/4/1990",
			want:      map[string]string{"dateOfBirth": "1990-03-04"},
		},
		{
			name:      "bare date converges on date of birth",
			utterance: "the date is 12/25/1985",
			want:      map[string]string{"dateOfBirth": "1985-12-25"},
		},
		{
			name:      "address keeps commas",
			utterance: "I live at 12 Oak Street, Springfield, IL 62704. Thanks",
			want:      map[string]string{"currentAddress": "12 Oak Street, Springfield, IL 62704"},
		},
		{
			name:      "address stops before the next clause",
			utterance: "I live at 12 Main St, Springfield and my phone is 555 123 4567",
			want:      map[string]string{"currentAddress": "12 Main St, Springfield", "phoneNumber": "555 123 4567"},
		},
		{
			name:      "address trailing comma trimmed",
			utterance: "my address is 9 Pine Ave, and my email is p@q.io",
			want:      map[string]string{"currentAddress": "9 Pine Ave", "emailAddress": "p@q.io"},
		},
		{
			name:      "email address is not a street address",
			utterance: "my email address is sam@example.org",
			want:      map[string]string{"emailAddress": "sam@example.org"},
		},
		{
			name:      "female wins over male",
			utterance: "I'm female, not male",
			want:      map[string]string{"gender": "Female"},
		},
		{
			name:      "male",
			utterance: "I am a male",
			want:      map[string]string{"gender": "Male"},
		},
		{
			name:      "marital status capitalised",
			utterance: "I'm MARRIED, previously divorced",
			want:      map[string]string{"maritalStatus": "Married"},
		},
		{
			name:      "ssml markup stripped",
			utterance: `<speak>My name is <emphasis>Ann Lee</emphasis>.</speak>`,
			want:      map[string]string{"fullName": "Ann Lee"},
		},
		{
			name:      "nothing recognised",
			utterance: "hello there",
			want:      map[string]string{},
		},
	}

	e := extract.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, values(e.Utterance(tt.utterance)))
		})
	}
}

func TestUtterance_CandidatesFollowRuleOrder(t *testing.T) {
	got := extract.New().Utterance("email me at a@b.co or call (555) 123-4567, I am single")

	rules := make([]extract.RuleName, len(got))
	for i, c := range got {
		rules[i] = c.Rule
	}
	assert.Equal(t, []extract.RuleName{extract.RuleEmail, extract.RulePhone, extract.RuleMarital}, rules)
}

func TestWithTargets(t *testing.T) {
	e := extract.New(extract.WithTargets(map[extract.RuleName]string{
		extract.RuleDate:    "effectiveDate",
		extract.RuleAddress: "",
	}))

	got := values(e.Utterance("start on 1/2/2030, address is 1 Main Rd"))
	assert.Equal(t, map[string]string{"effectiveDate": "2030-01-02"}, got)

	got = values(e.Utterance("born 1/2/1980"))
	assert.Equal(t, map[string]string{"dateOfBirth": "1980-01-02"}, got)
}

func TestWithRules_CustomExclusion(t *testing.T) {
	always := func(v string) extract.MatchFunc {
		return func(string) (string, bool) { return v, true }
	}
	e := extract.New(extract.WithRules([]extract.Rule{
		{Name: "first", Target: "a", Match: always("1")},
		{Name: "second", Target: "b", Excludes: []extract.RuleName{"first"}, Match: always("2")},
		{Name: "third", Target: "c", Match: always("3")},
	}))

	assert.Equal(t, map[string]string{"a": "1", "c": "3"}, values(e.Utterance("anything")))
}

func TestPayload(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantField string
		wantValue string
		wantParam extract.Parameter
	}{
		{name: "canonical keys", payload: `{"fieldId":"dob","value":"03/04/1990"}`, wantField: "dob", wantValue: "03/04/1990"},
		{name: "snake case", payload: `{"field_id":"ssn","answer":"123456789"}`, wantField: "ssn", wantValue: "123456789"},
		{name: "name and text", payload: `{"name":"dob","text":"03/04/1990"}`, wantField: "dob", wantValue: "03/04/1990"},
		{name: "first present wins", payload: `{"id":"late","fieldName":"early","response":"r","value":"v"}`, wantField: "early", wantValue: "v"},
		{name: "blank value skipped", payload: `{"fieldId":"x","value":"  ","response":"kept"}`, wantField: "x", wantValue: "kept"},
		{name: "numeric value", payload: `{"fieldId":"movingViolations","value":2}`, wantField: "movingViolations", wantValue: "2"},
		{name: "missing field", payload: `{"value":"test"}`, wantParam: extract.ParameterField},
		{name: "missing value", payload: `{"fieldName":"unknown_xyz"}`, wantParam: extract.ParameterValue},
		{name: "empty payload", payload: `{}`, wantParam: extract.ParameterField},
	}

	e := extract.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &payload))

			call, err := e.Payload(payload)
			if tt.wantParam != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, extract.ErrMissingParameter))
				var missing *extract.MissingParameterError
				require.True(t, errors.As(err, &missing))
				assert.Equal(t, tt.wantParam, missing.Parameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, call.FieldHint)
			assert.Equal(t, tt.wantValue, call.Value)
		})
	}
}

func TestWithPayloadKeys(t *testing.T) {
	e := extract.New(extract.WithPayloadKeys([]string{"question"}, nil))

	call, err := e.Payload(map[string]any{"question": "ssn", "fieldId": "dob", "answer": "123456789"})
	require.NoError(t, err)
	assert.Equal(t, "ssn", call.FieldHint)
	assert.Equal(t, "123456789", call.Value)

	_, err = e.Payload(map[string]any{"fieldId": "dob", "value": "1/2/1990"})
	assert.ErrorIs(t, err, extract.ErrMissingParameter)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "I'm here & ready", extract.Sanitize("  I&#39;m <b>here</b>   &amp; ready "))
	assert.Equal(t, "plain text", extract.Sanitize("plain\ttext\n"))
}
