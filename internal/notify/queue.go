// Package notify implements the transient user-facing notification
// queue. Notifications auto-expire after a fixed delay unless
// dismissed first; removal by id is always an idempotent no-op when
// the id is already gone, so the scheduled expiry and a manual dismiss
// can race safely.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"chitieu/internal/core"
)

// DefaultTTL is how long a notification stays visible unless dismissed.
const DefaultTTL = 5 * time.Second

// Notification is a transient user-facing message. It is exclusively
// owned by the queue; consumers receive copies.
type Notification struct {
	ID        string                `json:"id"`
	Message   string                `json:"message"`
	Type      core.NotificationType `json:"type"`
	CreatedAt time.Time             `json:"createdAt"`
}

type entry struct {
	n     Notification
	timer *time.Timer
}

// Queue is an ordered, append-only list of active notifications.
// Insertion order is preserved for display.
type Queue struct {
	mu    sync.Mutex
	ttl   time.Duration
	items []*entry
}

// NewQueue creates a queue whose notifications expire after ttl.
// A non-positive ttl falls back to DefaultTTL.
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl}
}

// Push appends a notification and schedules its automatic removal.
func (q *Queue) Push(message string, typ core.NotificationType) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	e := &entry{n: n}
	e.timer = time.AfterFunc(q.ttl, func() { q.Dismiss(n.ID) })
	q.items = append(q.items, e)
	q.mu.Unlock()

	return n
}

// Dismiss removes the notification immediately, regardless of its
// remaining delay. Unknown ids are a no-op: the expiry callback may
// fire after a manual dismiss or after Clear.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.items {
		if e.n.ID == id {
			e.timer.Stop()
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Active returns the current notifications in insertion order.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Notification, len(q.items))
	for i, e := range q.items {
		out[i] = e.n
	}
	return out
}

// Clear drops every pending notification and cancels its timer.
// Used on session reset and logout.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.items {
		e.timer.Stop()
	}
	q.items = nil
}
