package runner

import (
	"context"
	"time"
)

// watcher polls the timer registry on a ticker while a session is live.
type watcher struct {
	cancel context.CancelFunc
}

func startWatcher(interval time.Duration, poll func()) *watcher {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				poll()
			case <-ctx.Done():
				return
			}
		}
	}()

	return &watcher{cancel: cancel}
}

func (c *Controller) startWatcherLocked() {
	if c.tick < 0 {
		return
	}
	sessionID := c.session.ID
	c.watcher = startWatcher(c.tick, func() {
		c.pollSession(sessionID)
	})
}

func (c *Controller) stopWatcherLocked() {
	if c.watcher == nil {
		return
	}
	c.watcher.cancel()
	c.watcher = nil
}

// PollTimers reads every timer once, emitting a tick per active timer and a
// completion event the first time a timer is seen at zero. The background
// watcher calls it every tick; calling it directly is safe.
func (c *Controller) PollTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollLocked()
}

func (c *Controller) pollSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A tick can race with End or a replacing Start.
	if c.session == nil || c.session.ID != sessionID {
		return
	}
	c.pollLocked()
}

func (c *Controller) pollLocked() {
	if c.session == nil {
		return
	}
	now := c.now()
	sessionID := c.session.ID

	for _, v := range c.timers.List(now) {
		if !v.Active {
			continue
		}

		// Completion follows the floored seconds observers see, so a tick
		// with zero seconds left is always paired with a completion.
		if v.RemainingSeconds > 0 {
			// Resumed or fresh timers may complete again.
			delete(c.fired, v.ID)
			c.emitLocked(Event{
				Type:             EventTimerTick,
				SessionID:        sessionID,
				TimerID:          v.ID,
				Label:            v.Label,
				Remaining:        v.Remaining,
				RemainingSeconds: v.RemainingSeconds,
				At:               now,
			})
			continue
		}

		if c.fired[v.ID] {
			continue
		}
		c.fired[v.ID] = true
		c.emitLocked(Event{
			Type:      EventTimerTick,
			SessionID: sessionID,
			TimerID:   v.ID,
			Label:     v.Label,
			Remaining: v.Remaining,
			At:        now,
		})
		c.emitLocked(Event{
			Type:      EventTimerCompleted,
			SessionID: sessionID,
			TimerID:   v.ID,
			Label:     v.Label,
			At:        now,
		})
		c.logger.Info("timer completed", "session_id", sessionID, "timer_id", v.ID, "label", v.Label)
	}
}
