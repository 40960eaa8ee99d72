package resolve_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-voiceform/pkg/testsupport"
)

type spokenHint struct {
	Hint     string `json:"hint"`
	FieldID  string `json:"fieldId"`
	Strategy string `json:"strategy"`
}

// TestResolve_SpokenHintsGolden pins how hints heard from voice agents
// resolve against the embedded questionnaire. Unresolved hints carry an
// empty field id.
func TestResolve_SpokenHintsGolden(t *testing.T) {
	path := filepath.Join("testdata", "spoken_hints.golden.json")

	var want []spokenHint
	testsupport.MustLoadJSON(t, path, &want)

	r := defaultResolver(t)
	got := make([]spokenHint, 0, len(want))
	for _, tc := range want {
		row := spokenHint{Hint: tc.Hint}
		if res, err := r.Resolve(tc.Hint); err == nil {
			row.FieldID = res.FieldID
			row.Strategy = string(res.Strategy)
		}
		got = append(got, row)
	}

	if testsupport.WriteGolden(t, path, got) {
		return
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("spoken hint resolution mismatch (-want +got):\n%s", diff)
	}
}
