package session_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-voiceform/pkg/extract"
	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/resolve"
	"github.com/goliatone/go-voiceform/pkg/schema"
	"github.com/goliatone/go-voiceform/pkg/session"
)

type recordingRecorder struct {
	mu          sync.Mutex
	assignments []string
	toolCalls   []string
	candidates  []string
	active      int
}

func (r *recordingRecorder) ObserveAssignment(source, fieldID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = append(r.assignments, source+":"+fieldID)
}

func (r *recordingRecorder) ObserveResolution(string, bool) {}

func (r *recordingRecorder) ObserveCandidate(rule string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = append(r.candidates, rule)
}

func (r *recordingRecorder) ObserveToolCall(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toolCalls = append(r.toolCalls, outcome)
}

func (r *recordingRecorder) ObserveNavigation(string, bool) {}

func (r *recordingRecorder) SetActiveSessions(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func newSession(t *testing.T, opts ...session.Option) *session.Session {
	t.Helper()
	s, err := session.New(schema.MustDefault(), opts...)
	require.NoError(t, err)
	return s
}

func TestHandleToolCall(t *testing.T) {
	tests := []struct {
		name      string
		payload   map[string]any
		wantAck   string
		wantField string
		wantValue string
	}{
		{
			name:      "alias with slash date",
			payload:   map[string]any{"name": "dob", "value": "03/04/1990"},
			wantAck:   "Updated dateOfBirth",
			wantField: "dateOfBirth",
			wantValue: "1990-03-04",
		},
		{
			name:      "canonical id with phone digits",
			payload:   map[string]any{"fieldId": "phoneNumber", "value": "5551234567"},
			wantAck:   "Updated phoneNumber",
			wantField: "phoneNumber",
			wantValue: "(555) 123-4567",
		},
		{
			name:      "normalized hint with ssn",
			payload:   map[string]any{"field_id": "SSN", "text": "123 45 6789"},
			wantAck:   "Updated ssn",
			wantField: "ssn",
			wantValue: "123-45-6789",
		},
		{
			name:      "select value kept verbatim",
			payload:   map[string]any{"fieldName": "marital status", "answer": "Married"},
			wantAck:   "Updated maritalStatus",
			wantField: "maritalStatus",
			wantValue: "Married",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			ack := s.HandleToolCall(context.Background(), tt.payload)
			assert.Equal(t, tt.wantAck, ack)

			got, ok := s.Interview().Value(tt.wantField)
			require.True(t, ok)
			assert.Equal(t, tt.wantValue, got)
		})
	}
}

func TestHandleToolCall_UnknownFieldLeavesStateUnchanged(t *testing.T) {
	s := newSession(t)
	s.HandleToolCall(context.Background(), map[string]any{"fieldId": "fullName", "value": "Jane Doe"})
	before := s.Interview().Answers()

	ack := s.HandleToolCall(context.Background(), map[string]any{"fieldName": "unknown_xyz", "value": "test"})

	assert.Equal(t, "unknown field: unknown_xyz", ack)
	assert.Equal(t, before, s.Interview().Answers())
}

func TestHandleToolCall_MissingParameters(t *testing.T) {
	s := newSession(t)

	ack := s.HandleToolCall(context.Background(), map[string]any{"value": "x"})
	assert.True(t, strings.HasPrefix(ack, "missing parameter: field"), ack)

	ack = s.HandleToolCall(context.Background(), map[string]any{"fieldId": "fullName"})
	assert.True(t, strings.HasPrefix(ack, "missing parameter: value"), ack)

	assert.Zero(t, s.Interview().AnsweredCount())

	notes := s.Notifications()
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, session.LevelError, n.Level)
		assert.NotEmpty(t, n.ID)
	}
}

func TestHandleToolCall_UnparseableDateStoredRaw(t *testing.T) {
	s := newSession(t)

	ack := s.HandleToolCall(context.Background(), map[string]any{"fieldId": "dateOfBirth", "value": "sometime in spring"})

	assert.Equal(t, "Updated dateOfBirth", ack)
	got, _ := s.Interview().Value("dateOfBirth")
	assert.Equal(t, "sometime in spring", got)

	var levels []session.Level
	for _, n := range s.Notifications() {
		levels = append(levels, n.Level)
	}
	assert.Equal(t, []session.Level{session.LevelWarning, session.LevelSuccess}, levels)
}

func TestHandleUtterance(t *testing.T) {
	rec := &recordingRecorder{}
	s := newSession(t, session.WithRecorder(rec))

	outcomes := s.HandleUtterance(context.Background(), "My name is John Smith and my phone is 555-123-4567")

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.True(t, o.OK(), o.Message)
		assert.Equal(t, session.SourceUtterance, o.Source)
	}

	name, _ := s.Interview().Value("fullName")
	phone, _ := s.Interview().Value("phoneNumber")
	assert.Equal(t, "John Smith", name)
	assert.Equal(t, "(555) 123-4567", phone)
	assert.Equal(t, []string{"name", "phone"}, rec.candidates)
	assert.Equal(t, []string{"utterance:fullName", "utterance:phoneNumber"}, rec.assignments)
}

func TestHandleUtterance_AddressEndsBeforeNextClause(t *testing.T) {
	s := newSession(t)

	outcomes := s.HandleUtterance(context.Background(), "I live at 12 Main St, Springfield and my phone is 555 123 4567")

	require.Len(t, outcomes, 2)
	address, _ := s.Interview().Value("currentAddress")
	phone, _ := s.Interview().Value("phoneNumber")
	assert.Equal(t, "12 Main St, Springfield", address)
	assert.Equal(t, "(555) 123-4567", phone)
}

func TestHandleUtterance_FailingCandidateDoesNotBlockOthers(t *testing.T) {
	s := newSession(t, session.WithExtractorOptions(extract.WithTargets(map[extract.RuleName]string{
		extract.RuleEmail: "nowhere",
	})))

	outcomes := s.HandleUtterance(context.Background(), "I'm Ana Lopez, email ana@example.com")

	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].OK())
	assert.False(t, outcomes[1].OK())
	assert.ErrorIs(t, outcomes[1].Err, resolve.ErrUnresolvedField)

	name, _ := s.Interview().Value("fullName")
	assert.Equal(t, "Ana Lopez", name)
	_, ok := s.Interview().Value("emailAddress")
	assert.False(t, ok)
}

func TestHandleUtterance_NothingRecognized(t *testing.T) {
	s := newSession(t)
	assert.Empty(t, s.HandleUtterance(context.Background(), "hmm let me think"))
	assert.Zero(t, s.Interview().AnsweredCount())
}

func TestEdit(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	got, err := s.Edit(ctx, "ssn", "1234")
	require.NoError(t, err)
	assert.Equal(t, "123-4", got)

	got, err = s.Edit(ctx, "ssn", got+"56789")
	require.NoError(t, err)
	assert.Equal(t, "123-45-6789", got)

	got, err = s.Edit(ctx, "fullName", "Jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got)

	_, err = s.Edit(ctx, "nope", "x")
	assert.ErrorIs(t, err, interview.ErrUnknownField)
}

func TestNavigationIsGated(t *testing.T) {
	s := newSession(t)
	assert.False(t, s.Next())
	assert.Equal(t, 0, s.Interview().Cursor())

	require.NoError(t, s.JumpTo(3))
	assert.Equal(t, 3, s.Interview().Cursor())
	assert.True(t, s.Previous())
	assert.Equal(t, 2, s.Interview().Cursor())
	assert.ErrorIs(t, s.JumpTo(99), interview.ErrSectionOutOfRange)
}

func TestNotifierFanOut(t *testing.T) {
	var got []session.Notification
	s := newSession(t, session.WithNotifier(session.Multi{
		session.NotifierFunc(func(n session.Notification) { got = append(got, n) }),
		nil,
	}))

	s.HandleToolCall(context.Background(), map[string]any{"fieldId": "emailAddress", "value": "a@b.co"})

	require.Len(t, got, 1)
	assert.Equal(t, "emailAddress", got[0].FieldID)
	assert.Equal(t, s.ID(), got[0].SessionID)
	assert.Equal(t, "Updated emailAddress", got[0].Message)
}

func TestLogNotifier(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s := newSession(t, session.WithNotifier(session.LogNotifier{Logger: logger}))
	ctx := context.Background()

	s.HandleToolCall(ctx, map[string]any{"fieldId": "emailAddress", "value": "a@b.co"})
	s.HandleToolCall(ctx, map[string]any{"fieldId": "unknown_xyz", "value": "test"})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "Updated emailAddress", entries[0].Message)
	assert.Equal(t, "emailAddress", entries[0].Data["field_id"])
	assert.Equal(t, s.ID(), entries[0].Data["session_id"])
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, "unknown field: unknown_xyz", entries[1].Message)

	assert.Len(t, s.Notifications(), 2, "queue still receives every notification")
}

func TestQueueDropsOldest(t *testing.T) {
	q := session.NewQueue(2)
	q.Notify(session.Notification{Message: "a"})
	q.Notify(session.Notification{Message: "b"})
	q.Notify(session.Notification{Message: "c"})

	out := q.Drain()
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Message)
	assert.Equal(t, "c", out[1].Message)
	assert.Zero(t, q.Len())
}

func TestRegistry(t *testing.T) {
	rec := &recordingRecorder{}
	reg := session.NewRegistry(schema.MustDefault(),
		session.WithTTL(time.Minute),
		session.WithRegistryRecorder(rec),
	)

	a, err := reg.Create()
	require.NoError(t, err)
	b, err := reg.Create(session.WithID("fixed"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", b.ID())
	assert.Equal(t, 2, rec.active)
	assert.Equal(t, 2, reg.Len())

	got, err := reg.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, reg.Delete("fixed"))
	assert.ErrorIs(t, reg.Delete("fixed"), session.ErrSessionNotFound)
	_, err = reg.Get("fixed")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Equal(t, 1, rec.active)

	assert.Zero(t, reg.Sweep(time.Now()))
	assert.Equal(t, 1, reg.Sweep(time.Now().Add(2*time.Minute)))
	assert.Zero(t, reg.Len())
	assert.Zero(t, rec.active)
}
