// Package session wires the voice pipeline around one interview: structured
// tool calls and free-text utterances are resolved to canonical field ids,
// canonicalized, and assigned through the interview state machine. Failures
// are converted to notifications and acknowledgement strings at this
// boundary; malformed voice input never ends a session or corrupts stored
// answers.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/canonical"
	"github.com/goliatone/go-voiceform/pkg/extract"
	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/metrics"
	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/progress"
	"github.com/goliatone/go-voiceform/pkg/resolve"
)

// Source labels where an assignment came from.
type Source string

const (
	SourceToolCall  Source = "tool_call"
	SourceUtterance Source = "utterance"
	SourceEdit      Source = "edit"
)

// requestIDKey carries a transport request id through a context.
type requestIDKey struct{}

// WithRequestID annotates ctx with a request id used in log fields.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Outcome reports what happened to one candidate or tool call.
type Outcome struct {
	Source   Source           `json:"source"`
	Rule     extract.RuleName `json:"rule,omitempty"`
	Hint     string           `json:"hint"`
	FieldID  string           `json:"fieldId,omitempty"`
	Strategy resolve.Strategy `json:"strategy,omitempty"`
	Value    string           `json:"value,omitempty"`
	Message  string           `json:"message"`
	Err      error            `json:"-"`
}

// OK reports whether the value was stored.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Session is one interview plus the voice pipeline feeding it.
type Session struct {
	id        string
	createdAt time.Time
	lastSeen  atomic.Int64

	interview *interview.Interview
	extractor *extract.Extractor
	resolver  *resolve.Resolver
	notifier  Notifier
	queue     *Queue
	recorder  metrics.Recorder
	logger    *logrus.Logger

	baseMinutes int
	resolveOpts []resolve.Option
	extractOpts []extract.Option
	observers   []interview.Observer
}

// Option customises a Session.
type Option func(*Session)

// WithID fixes the session id instead of generating one.
func WithID(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier adds a notifier alongside the built-in queue.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithBaseMinutes sets the progress estimate for an empty interview.
func WithBaseMinutes(minutes int) Option {
	return func(s *Session) {
		s.baseMinutes = minutes
	}
}

// WithResolverOptions forwards options to the field resolver.
func WithResolverOptions(opts ...resolve.Option) Option {
	return func(s *Session) {
		s.resolveOpts = append(s.resolveOpts, opts...)
	}
}

// WithExtractorOptions forwards options to the entity extractor.
func WithExtractorOptions(opts ...extract.Option) Option {
	return func(s *Session) {
		s.extractOpts = append(s.extractOpts, opts...)
	}
}

// WithObserver registers an interview observer.
func WithObserver(fn interview.Observer) Option {
	return func(s *Session) {
		if fn != nil {
			s.observers = append(s.observers, fn)
		}
	}
}

// New starts a session over schema.
func New(schema *model.Schema, opts ...Option) (*Session, error) {
	s := &Session{
		id:          uuid.NewString(),
		createdAt:   time.Now().UTC(),
		queue:       NewQueue(DefaultQueueSize),
		recorder:    metrics.Nop{},
		logger:      discardLogger(),
		baseMinutes: progress.DefaultBaseMinutes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	ivOpts := []interview.Option{interview.WithEstimator(progress.New(s.baseMinutes))}
	for _, fn := range s.observers {
		ivOpts = append(ivOpts, interview.WithObserver(fn))
	}
	iv, err := interview.New(schema, ivOpts...)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	s.interview = iv
	s.extractor = extract.New(s.extractOpts...)
	s.resolver = resolve.New(schema, s.resolveOpts...)
	s.touch()
	return s, nil
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session started.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastSeen returns the time of the most recent operation.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load()).UTC()
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// Interview exposes the underlying state machine.
func (s *Session) Interview() *interview.Interview {
	return s.interview
}

// Schema returns the session schema.
func (s *Session) Schema() *model.Schema {
	return s.interview.Schema()
}

// Notifications drains queued notifications.
func (s *Session) Notifications() []Notification {
	return s.queue.Drain()
}

// View returns the display projection.
func (s *Session) View() interview.View {
	s.touch()
	return s.interview.View()
}

// HandleToolCall processes a structured "set field X to Y" payload. It
// returns "Updated <id>" on success or a descriptive error string; it never
// returns an error value because nothing structured crosses the voice agent
// boundary.
func (s *Session) HandleToolCall(ctx context.Context, payload map[string]any) string {
	s.touch()
	call, err := s.extractor.Payload(payload)
	if err != nil {
		s.recorder.ObserveToolCall("missing_parameter")
		s.log(ctx).WithError(err).Warn("tool call rejected")
		s.emit(LevelError, "", err.Error())
		return err.Error()
	}

	out := s.apply(ctx, SourceToolCall, "", call.FieldHint, call.Value)
	if out.OK() {
		s.recorder.ObserveToolCall("updated")
	} else {
		s.recorder.ObserveToolCall("unresolved")
	}
	return out.Message
}

// HandleUtterance extracts candidates from a transcribed utterance and runs
// each one through resolution, canonicalization and assignment
// independently. A failing candidate does not affect the others.
func (s *Session) HandleUtterance(ctx context.Context, text string) []Outcome {
	s.touch()
	candidates := s.extractor.Utterance(text)
	s.log(ctx).WithField("candidates", len(candidates)).Debug("utterance scanned")

	outcomes := make([]Outcome, 0, len(candidates))
	for _, c := range candidates {
		s.recorder.ObserveCandidate(string(c.Rule))
		outcomes = append(outcomes, s.apply(ctx, SourceUtterance, c.Rule, c.TargetFieldID, c.RawValue))
	}
	return outcomes
}

// Edit applies a direct keystroke edit to a known field id. The value is
// canonicalized for its type (SSN masking, phone formatting) before it is
// stored, and the stored value is returned.
func (s *Session) Edit(ctx context.Context, fieldID, raw string) (string, error) {
	s.touch()
	field, ok := s.Schema().Lookup(fieldID)
	if !ok {
		return "", fmt.Errorf("%w: %s", interview.ErrUnknownField, fieldID)
	}

	value := raw
	switch field.Type {
	case model.FieldTypeSSN:
		value = canonical.SSN(raw)
	case model.FieldTypePhone:
		if raw != "" {
			value = canonical.Phone(raw)
		}
	}

	if err := s.interview.Assign(fieldID, value); err != nil {
		return "", err
	}
	s.recorder.ObserveAssignment(string(SourceEdit), fieldID)
	s.log(ctx).WithField("field_id", fieldID).Debug("field edited")
	return value, nil
}

// Next advances when the current section is complete.
func (s *Session) Next() bool {
	s.touch()
	ok := s.interview.Next()
	s.recorder.ObserveNavigation("next", ok)
	return ok
}

// Previous moves back one section.
func (s *Session) Previous() bool {
	s.touch()
	ok := s.interview.Previous()
	s.recorder.ObserveNavigation("previous", ok)
	return ok
}

// JumpTo moves to section index without gating.
func (s *Session) JumpTo(index int) error {
	s.touch()
	err := s.interview.JumpTo(index)
	s.recorder.ObserveNavigation("jump", err == nil)
	return err
}

func (s *Session) apply(ctx context.Context, source Source, rule extract.RuleName, hint, raw string) Outcome {
	out := Outcome{Source: source, Rule: rule, Hint: hint}
	logger := s.log(ctx).WithFields(logrus.Fields{"source": source, "hint": hint})

	res, err := s.resolver.Resolve(hint)
	if err != nil {
		s.recorder.ObserveResolution("none", false)
		out.Err = err
		out.Message = resolutionMessage(hint, err)
		logger.WithError(err).Warn("field hint unresolved")
		s.emit(LevelError, "", out.Message)
		return out
	}
	s.recorder.ObserveResolution(string(res.Strategy), true)
	out.FieldID = res.FieldID
	out.Strategy = res.Strategy

	field, _ := s.Schema().Lookup(res.FieldID)
	value, cerr := canonical.Canonicalize(field, raw)
	if cerr != nil {
		logger.WithError(cerr).Debug("storing raw value")
		s.emit(LevelWarning, field.ID, fmt.Sprintf("Stored %s as given", field.ID))
	}

	if err := s.interview.Assign(field.ID, value); err != nil {
		out.Err = err
		out.Message = err.Error()
		logger.WithError(err).Error("assignment failed")
		s.emit(LevelError, field.ID, out.Message)
		return out
	}

	s.recorder.ObserveAssignment(string(source), field.ID)
	out.Value = value
	out.Message = "Updated " + field.ID
	logger.WithFields(logrus.Fields{
		"field_id": field.ID,
		"strategy": res.Strategy,
		"value":    canonical.Redact(field, value),
	}).Info("field updated")
	s.emit(LevelSuccess, field.ID, out.Message)
	return out
}

func resolutionMessage(hint string, err error) string {
	var unresolved *resolve.UnresolvedFieldError
	if errors.As(err, &unresolved) {
		return unresolved.Error()
	}
	return fmt.Sprintf("unknown field: %s", hint)
}

func (s *Session) emit(level Level, fieldID, message string) {
	n := newNotification(s.id, level, fieldID, message)
	s.queue.Notify(n)
	if s.notifier != nil {
		s.notifier.Notify(n)
	}
}

func (s *Session) log(ctx context.Context) *logrus.Entry {
	entry := s.logger.WithField("session_id", s.id)
	if id := requestID(ctx); id != "" {
		entry = entry.WithField("request_id", id)
	}
	return entry
}
