package testsupport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldensEnv enables golden regeneration when set to any value.
const UpdateGoldensEnv = "UPDATE_GOLDENS"

// MustLoadJSON decodes the JSON fixture at path into out.
func MustLoadJSON(t *testing.T, path string, out any) {
	t.Helper()

	if err := LoadJSON(path, out); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
}

// LoadJSON decodes the JSON fixture at path into out without requiring
// testing.T, so fixtures can be read from setup helpers.
func LoadJSON(path string, out any) error {
	if path == "" {
		return errors.New("testsupport: fixture path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("testsupport: read fixture: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("testsupport: unmarshal fixture: %w", err)
	}
	return nil
}

// MustLoadAnswers reads a JSON object of field id to answer.
func MustLoadAnswers(t *testing.T, path string) map[string]string {
	t.Helper()

	var answers map[string]string
	MustLoadJSON(t, path, &answers)
	return answers
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set and
// reports whether it did, in which case the caller should stop comparing.
func WriteGolden(t *testing.T, path string, value any) bool {
	t.Helper()

	if os.Getenv(UpdateGoldensEnv) == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	return WriteMaybeGolden(t, path, append(payload, '\n'))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateGoldensEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any, opts ...cmp.Option) string {
	return cmp.Diff(want, got, opts...)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
