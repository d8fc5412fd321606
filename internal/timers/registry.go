// Package timers keeps the countdown timers of a cooking session.
//
// Remaining time is recomputed from the wall-clock anchor on every read, so a
// timer stays correct across any gap in observation (a suspended client, a
// stalled goroutine). The registry never pushes events; callers poll.
package timers

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hperssn/sous/internal/domain"
)

var ErrTimerNotFound = errors.New("timer not found")

// View is a point-in-time read of one timer. Durations are exposed to
// clients in whole seconds.
type View struct {
	domain.Timer
	Remaining        time.Duration `json:"-"`
	DurationSeconds  int           `json:"durationSeconds"`
	RemainingSeconds int           `json:"remainingSeconds"`
}

func newView(t *domain.Timer, now time.Time) View {
	remaining := t.RemainingAt(now)
	return View{
		Timer:            *t,
		Remaining:        remaining,
		DurationSeconds:  domain.Seconds(t.Duration),
		RemainingSeconds: domain.Seconds(remaining),
	}
}

type Registry struct {
	mu    sync.Mutex
	now   func() time.Time
	order []string
	byID  map[string]*domain.Timer
}

func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		now:  now,
		byID: make(map[string]*domain.Timer),
	}
}

// Add starts a new timer anchored at the current instant.
func (r *Registry) Add(label string, d time.Duration) string {
	if d < 0 {
		d = 0
	}

	t := &domain.Timer{
		ID:        uuid.New().String(),
		Label:     label,
		Duration:  d,
		StartedAt: r.now(),
		Active:    true,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = t
	r.order = append(r.order, t.ID)
	return t.ID
}

// Remove is idempotent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Pause freezes the timer at its current remaining time.
func (r *Registry) Pause(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return ErrTimerNotFound
	}
	if !t.Active {
		return nil
	}
	t.Duration = t.RemainingAt(r.now())
	t.Active = false
	return nil
}

// Resume re-anchors the timer at now with the duration frozen by Pause.
func (r *Registry) Resume(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return ErrTimerNotFound
	}
	if t.Active {
		return nil
	}
	t.StartedAt = r.now()
	t.Active = true
	return nil
}

func (r *Registry) Remaining(id string, now time.Time) (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return 0, ErrTimerNotFound
	}
	return t.RemainingAt(now), nil
}

func (r *Registry) Get(id string) (domain.Timer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[id]
	if !ok {
		return domain.Timer{}, false
	}
	return *t, true
}

// List returns every timer in creation order.
func (r *Registry) List(now time.Time) []View {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]View, 0, len(r.order))
	for _, id := range r.order {
		t := r.byID[id]
		views = append(views, newView(t, now))
	}
	return views
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// Clear drops every timer and reports how many were discarded.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byID)
	r.byID = make(map[string]*domain.Timer)
	r.order = nil
	return n
}

func (r *Registry) Now() time.Time {
	return r.now()
}
