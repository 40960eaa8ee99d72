package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/goliatone/go-voiceform/pkg/interview"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_DIR", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	out, err := execute(t, "extract", "my name is Jane Doe and my email is jane@x.com")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	for _, want := range []string{"RULE", "fullName", "Jane Doe", "emailAddress", "jane@x.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExtractCommand_NothingRecognized(t *testing.T) {
	out, err := execute(t, "extract", "good morning")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(out) != "No answers recognized" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		hint string
		want string
	}{
		{hint: "dob", want: "dateOfBirth (alias)\n"},
		{hint: "coverage amount", want: "existingCoverageAmount (containment)\nalso matches: desiredCoverageAmount\n"},
		{hint: "smoker", want: "formerSmokerQuitDate (containment)\n"},
		{hint: "cell phone", want: "\"cell phone\" does not match any field\n"},
	}

	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			out, err := execute(t, "resolve", tt.hint)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if out != tt.want {
				t.Fatalf("want %q, got %q", tt.want, out)
			}
		})
	}
}

func TestAuditEvents(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	auditEvents(logger)(interview.Event{Kind: interview.EventAssigned, FieldID: "ssn", Cursor: 0})

	entry := hook.LastEntry()
	if entry == nil || entry.Message != "interview state changed" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Data["event"] != "assigned" || entry.Data["field_id"] != "ssn" {
		t.Fatalf("unexpected fields %v", entry.Data)
	}
}

func TestSchemaExportCommand(t *testing.T) {
	out, err := execute(t, "schema", "export")
	if err != nil {
		t.Fatalf("export yaml: %v", err)
	}
	if !strings.Contains(out, "Personal Info") || !strings.Contains(out, "fullName") {
		t.Fatalf("yaml export missing questionnaire content:\n%s", out)
	}

	out, err = execute(t, "schema", "export", "--format", "openapi")
	if err != nil {
		t.Fatalf("export openapi: %v", err)
	}
	if !strings.Contains(out, `"properties"`) || !strings.Contains(out, `"dateOfBirth"`) {
		t.Fatalf("openapi export missing properties:\n%s", out)
	}

	if _, err := execute(t, "schema", "export", "--format", "xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
