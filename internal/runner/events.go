package runner

import "time"

type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventSessionReplaced EventType = "session_replaced"
	EventSessionEnded    EventType = "session_ended"
	EventStepChanged     EventType = "step_changed"
	EventPauseChanged    EventType = "pause_changed"
	EventVoiceChanged    EventType = "voice_changed"
	EventTimerTick       EventType = "timer_tick"
	EventTimerCompleted  EventType = "timer_completed"
	EventWarning         EventType = "warning"
)

// Event is a controller update for UI observers.
type Event struct {
	Type             EventType     `json:"type"`
	SessionID        string        `json:"sessionId,omitempty"`
	RecipeID         string        `json:"recipeId,omitempty"`
	Step             int           `json:"step"`
	TimerID          string        `json:"timerId,omitempty"`
	Label            string        `json:"label,omitempty"`
	Remaining        time.Duration `json:"-"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Completed        bool          `json:"completed,omitempty"`
	Enabled          bool          `json:"enabled,omitempty"`
	Message          string        `json:"message,omitempty"`
	At               time.Time     `json:"at"`
}

// Observer receives controller events as callbacks.
type Observer interface {
	OnStepChanged(index int)
	OnTimerTick(id string, remainingSeconds int)
	OnTimerCompleted(id string)
	OnSessionEnded(completed bool)
}

// Observe dispatches events to o until stop is called or the controller
// closes its subscribers. Events without an Observer method are skipped.
func (c *Controller) Observe(o Observer) (stop func()) {
	ch := c.Subscribe(64)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range ch {
			switch ev.Type {
			case EventStepChanged:
				o.OnStepChanged(ev.Step)
			case EventTimerTick:
				o.OnTimerTick(ev.TimerID, ev.RemainingSeconds)
			case EventTimerCompleted:
				o.OnTimerCompleted(ev.TimerID)
			case EventSessionEnded:
				o.OnSessionEnded(ev.Completed)
			}
		}
	}()

	return func() {
		c.Unsubscribe(ch)
		<-done
	}
}
