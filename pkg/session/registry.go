package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-voiceform/pkg/metrics"
	"github.com/goliatone/go-voiceform/pkg/model"
)

// ErrSessionNotFound is returned when a session id is not registered.
var ErrSessionNotFound = errors.New("session: not found")

// DefaultTTL is how long an idle session is kept before Sweep drops it.
const DefaultTTL = 2 * time.Hour

// Registry tracks live sessions for transports that multiplex several
// interviews (HTTP, MCP).
type Registry struct {
	mu       sync.RWMutex
	schema   *model.Schema
	sessions map[string]*Session
	ttl      time.Duration
	recorder metrics.Recorder
	opts     []Option
}

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithTTL sets the idle timeout used by Sweep.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithSessionOptions applies opts to every session the registry creates.
func WithSessionOptions(opts ...Option) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// WithRegistryRecorder reports the active session count to rec.
func WithRegistryRecorder(rec metrics.Recorder) RegistryOption {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// NewRegistry creates an empty registry over schema.
func NewRegistry(schema *model.Schema, opts ...RegistryOption) *Registry {
	r := &Registry{
		schema:   schema,
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		recorder: metrics.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Schema returns the schema shared by registered sessions.
func (r *Registry) Schema() *model.Schema {
	return r.schema
}

// Create starts and registers a new session. Extra options are applied
// after the registry defaults.
func (r *Registry) Create(opts ...Option) (*Session, error) {
	all := make([]Option, 0, len(r.opts)+len(opts)+1)
	all = append(all, WithRecorder(r.recorder))
	all = append(all, r.opts...)
	all = append(all, opts...)

	s, err := New(r.schema, all...)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID()] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.recorder.SetActiveSessions(n)
	return s, nil
}

// Get returns the session registered under id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete removes id. Deleting an unknown id returns ErrSessionNotFound.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	if _, ok := r.sessions[id]; !ok {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	r.recorder.SetActiveSessions(n)
	return nil
}

// IDs lists registered session ids in creation order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].createdAt.Equal(list[j].createdAt) {
			return list[i].id < list[j].id
		}
		return list[i].createdAt.Before(list[j].createdAt)
	})
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.id
	}
	return ids
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL as of now and returns
// how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.recorder.SetActiveSessions(n)
	}
	return removed
}
