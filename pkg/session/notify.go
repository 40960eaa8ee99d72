package session

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Level grades a notification for display.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a user-facing message emitted by the pipeline. Rendering
// (toasts, banners, speech) belongs to the display layer.
type Notification struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	FieldID   string    `json:"fieldId,omitempty"`
	Time      time.Time `json:"time"`
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

// Notify forwards n to every non-nil notifier.
func (m Multi) Notify(n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// DefaultQueueSize bounds a Queue created with a non-positive size.
const DefaultQueueSize = 64

// Queue buffers notifications until the display layer drains them. When
// full, the oldest entry is dropped.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	size  int
}

// NewQueue returns a queue holding at most size notifications.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size}
}

// Notify appends n.
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.size {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns and clears buffered notifications, oldest first.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of buffered notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// LogNotifier writes notifications to a logrus logger.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

// Notify logs n at a level matching its severity.
func (l LogNotifier) Notify(n Notification) {
	if l.Logger == nil {
		return
	}
	entry := l.Logger.WithFields(logrus.Fields{
		"session_id": n.SessionID,
		"field_id":   n.FieldID,
		"level_hint": string(n.Level),
	})
	switch n.Level {
	case LevelError:
		entry.Warn(n.Message)
	case LevelWarning:
		entry.Info(n.Message)
	default:
		entry.Debug(n.Message)
	}
}

func newNotification(sessionID string, level Level, fieldID, message string) Notification {
	return Notification{
		ID:        ulid.Make().String(),
		SessionID: sessionID,
		Level:     level,
		Message:   message,
		FieldID:   fieldID,
		Time:      time.Now().UTC(),
	}
}
