package interview

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/progress"
)

// EventKind classifies state changes delivered to observers.
type EventKind string

const (
	EventAssigned  EventKind = "assigned"
	EventCleared   EventKind = "cleared"
	EventNavigated EventKind = "navigated"
)

// Event describes one successful mutation.
type Event struct {
	Kind    EventKind
	FieldID string
	Cursor  int
}

// Observer receives events after the mutation has been applied. Observers run
// outside the interview lock and may call back into the interview.
type Observer func(Event)

// Interview is the state machine for one session.
type Interview struct {
	mu        sync.Mutex
	schema    *model.Schema
	answers   map[string]string
	cursor    int
	estimator progress.Estimator
	observers []Observer
}

// Option customises an Interview.
type Option func(*Interview)

// WithEstimator sets the progress estimator used by View and Remaining.
func WithEstimator(e progress.Estimator) Option {
	return func(i *Interview) {
		i.estimator = e
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(fn Observer) Option {
	return func(i *Interview) {
		if fn != nil {
			i.observers = append(i.observers, fn)
		}
	}
}

// New starts an interview at the first section with no answers.
func New(schema *model.Schema, opts ...Option) (*Interview, error) {
	if schema.SectionCount() == 0 {
		return nil, ErrNoSections
	}
	i := &Interview{
		schema:    schema,
		answers:   make(map[string]string),
		estimator: progress.New(progress.DefaultBaseMinutes),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i, nil
}

// Schema returns the schema the interview was built over.
func (i *Interview) Schema() *model.Schema {
	return i.schema
}

// Assign stores value under id, overwriting any previous answer. An empty
// value removes the answer. Assign is legal in every section.
func (i *Interview) Assign(id, value string) error {
	if !i.schema.Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownField, id)
	}

	i.mu.Lock()
	kind := EventAssigned
	if value == "" {
		kind = EventCleared
		delete(i.answers, id)
	} else {
		i.answers[id] = value
	}
	ev := Event{Kind: kind, FieldID: id, Cursor: i.cursor}
	observers := i.snapshotObservers()
	i.mu.Unlock()

	notify(observers, ev)
	return nil
}

// Next advances one section when every required field of the current
// section is answered. It reports whether the cursor moved; it never moves
// past the final section.
func (i *Interview) Next() bool {
	i.mu.Lock()
	if i.cursor >= i.schema.SectionCount()-1 || !i.sectionCompleteLocked(i.cursor) {
		i.mu.Unlock()
		return false
	}
	i.cursor++
	ev := Event{Kind: EventNavigated, Cursor: i.cursor}
	observers := i.snapshotObservers()
	i.mu.Unlock()

	notify(observers, ev)
	return true
}

// Previous moves back one section when not already at the first.
func (i *Interview) Previous() bool {
	i.mu.Lock()
	if i.cursor == 0 {
		i.mu.Unlock()
		return false
	}
	i.cursor--
	ev := Event{Kind: EventNavigated, Cursor: i.cursor}
	observers := i.snapshotObservers()
	i.mu.Unlock()

	notify(observers, ev)
	return true
}

// JumpTo moves the cursor to index without checking required fields.
func (i *Interview) JumpTo(index int) error {
	if index < 0 || index >= i.schema.SectionCount() {
		return fmt.Errorf("%w: %d", ErrSectionOutOfRange, index)
	}

	i.mu.Lock()
	i.cursor = index
	ev := Event{Kind: EventNavigated, Cursor: index}
	observers := i.snapshotObservers()
	i.mu.Unlock()

	notify(observers, ev)
	return nil
}

// Cursor returns the current section index.
func (i *Interview) Cursor() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cursor
}

// IsReview reports whether the cursor sits on the final section.
func (i *Interview) IsReview() bool {
	return i.Cursor() == i.schema.SectionCount()-1
}

// CanAdvance reports whether Next would move the cursor.
func (i *Interview) CanAdvance() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cursor < i.schema.SectionCount()-1 && i.sectionCompleteLocked(i.cursor)
}

// SectionComplete reports whether every required field of section index is
// answered. Sections without required fields are always complete.
func (i *Interview) SectionComplete(index int) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.sectionCompleteLocked(index)
}

func (i *Interview) sectionCompleteLocked(index int) bool {
	section, ok := i.schema.Section(index)
	if !ok {
		return false
	}
	for _, field := range section.Fields {
		if field.Required && i.answers[field.ID] == "" {
			return false
		}
	}
	return true
}

// Value returns the stored answer for id.
func (i *Interview) Value(id string) (string, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.answers[id]
	return v, ok
}

// Answers returns a copy of the answer store.
func (i *Interview) Answers() map[string]string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.copyAnswersLocked()
}

func (i *Interview) copyAnswersLocked() map[string]string {
	out := make(map[string]string, len(i.answers))
	for k, v := range i.answers {
		out[k] = v
	}
	return out
}

// AnsweredCount counts answered fields across the whole schema.
func (i *Interview) AnsweredCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.answers)
}

// Remaining returns the estimated minutes left.
func (i *Interview) Remaining() int {
	return i.estimator.Remaining(i.AnsweredCount(), i.schema.TotalFields())
}

func (i *Interview) snapshotObservers() []Observer {
	if len(i.observers) == 0 {
		return nil
	}
	return append([]Observer(nil), i.observers...)
}

func notify(observers []Observer, ev Event) {
	for _, fn := range observers {
		fn(ev)
	}
}
