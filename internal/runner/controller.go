package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/narration"
	"github.com/hperssn/sous/internal/timers"
)

var (
	ErrNoSession   = errors.New("no active cooking session")
	ErrStepUntimed = errors.New("current step has no duration")
)

type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

const (
	defaultTickInterval     = time.Second
	defaultReportRetryDelay = 2 * time.Second
	defaultReportTimeout    = 10 * time.Second
)

// Options configures a Controller.
type Options struct {
	Now          func() time.Time
	VoiceEnabled bool
	Speech       domain.SpeakOptions
	// TickInterval is how often active timers are read and reported. Zero
	// means one second; a negative value disables the background watcher.
	TickInterval     time.Duration
	ReportRetryDelay time.Duration
	ReportTimeout    time.Duration
	Logger           *slog.Logger
}

// Controller drives one cooking session at a time through its steps. Every
// mutation happens under mu, so operations are atomic with respect to each
// other. Narration and completion reporting are best effort and never fail
// an operation.
type Controller struct {
	mu sync.Mutex

	now      func() time.Time
	logger   *slog.Logger
	tick     time.Duration
	narrator *narration.Guard
	recipes  domain.RecipeRepository
	reporter *reporter
	timers   *timers.Registry

	state   State
	session *domain.CookingSession
	voice   bool
	watcher *watcher
	// fired holds timers whose completion has already been emitted.
	fired    map[string]bool
	subs     []chan Event
	touched  time.Time
	inflight sync.WaitGroup
}

func NewController(narrator domain.Narrator, recipes domain.RecipeRepository, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TickInterval == 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.ReportRetryDelay <= 0 {
		opts.ReportRetryDelay = defaultReportRetryDelay
	}
	if opts.ReportTimeout <= 0 {
		opts.ReportTimeout = defaultReportTimeout
	}

	c := &Controller{
		now:      opts.Now,
		logger:   opts.Logger,
		tick:     opts.TickInterval,
		narrator: narration.NewGuard(narrator, opts.Speech, opts.Logger),
		recipes:  recipes,
		timers:   timers.NewRegistry(opts.Now),
		state:    StateIdle,
		voice:    opts.VoiceEnabled,
		fired:    make(map[string]bool),
		touched:  opts.Now(),
	}
	if recipes != nil {
		c.reporter = &reporter{
			repo:       recipes,
			retryDelay: opts.ReportRetryDelay,
			timeout:    opts.ReportTimeout,
			logger:     opts.Logger,
		}
	}
	return c
}

// StartByID loads the recipe from the repository and starts it.
func (c *Controller) StartByID(ctx context.Context, recipeID string) (*domain.CookingSession, error) {
	if c.recipes == nil {
		return nil, errors.New("no recipe repository configured")
	}
	recipe, err := c.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load recipe %s: %w", recipeID, err)
	}
	return c.Start(*recipe)
}

// Start begins a session for recipe. A live session is replaced outright:
// its timers are discarded and its narration stopped.
func (c *Controller) Start(recipe domain.Recipe) (*domain.CookingSession, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := domain.NewCookingSession(recipe, c.voice, now)
	if err != nil {
		return nil, err
	}

	if old := c.session; old != nil {
		discarded := c.timers.Clear()
		c.narrator.Stop()
		c.stopWatcherLocked()
		c.logger.Warn("replacing active cooking session",
			"replaced_session", old.ID,
			"replaced_recipe", old.RecipeID,
			"recipe_id", recipe.ID,
			"discarded_timers", discarded,
		)
		c.emitLocked(Event{
			Type:      EventSessionReplaced,
			SessionID: old.ID,
			RecipeID:  old.RecipeID,
			Step:      old.CurrentStep,
			Message:   fmt.Sprintf("discarded %d timers", discarded),
			At:        now,
		})
	} else {
		c.timers.Clear()
	}
	c.fired = make(map[string]bool)

	c.session = sess
	c.setStateLocked(StateActive)
	c.touched = now
	c.startWatcherLocked()

	c.logger.Info("cooking session started",
		"session_id", sess.ID,
		"recipe_id", sess.RecipeID,
		"steps", len(sess.Steps),
	)
	c.emitLocked(Event{Type: EventSessionStarted, SessionID: sess.ID, RecipeID: sess.RecipeID, At: now})
	c.emitLocked(Event{Type: EventStepChanged, SessionID: sess.ID, Step: 0, At: now})

	if c.voice {
		c.narrator.Speak(sess.Current().Instruction)
	}

	return sess.Clone(), nil
}

// Next moves one step forward. At the last step the index stays put and the
// session completes instead; completed reports which branch ran.
func (c *Controller) Next() (index int, completed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return 0, false
	}
	c.touchLocked()

	if s.CurrentStep < s.LastIndex() {
		s.CurrentStep++
		c.stepChangedLocked()
		return s.CurrentStep, false
	}

	index = s.CurrentStep
	c.endLocked(true)
	return index, true
}

// Previous moves one step back, never below zero. Narration is always
// stopped, so going back also silences the current read-out.
func (c *Controller) Previous() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return 0
	}
	c.touchLocked()

	if s.CurrentStep == 0 {
		c.narrator.Stop()
		return 0
	}
	s.CurrentStep--
	c.stepChangedLocked()
	return s.CurrentStep
}

// Goto jumps to step. Out of range targets are ignored.
func (c *Controller) Goto(step int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil || step < 0 || step > s.LastIndex() {
		return false
	}
	c.touchLocked()

	s.CurrentStep = step
	c.stepChangedLocked()
	return true
}

// Repeat reads the current step again.
func (c *Controller) Repeat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || !c.voice {
		return
	}
	c.touchLocked()
	c.narrator.Stop()
	c.narrator.Speak(c.session.Current().Instruction)
}

// TogglePause flips the session pause flag. Timers keep running; pausing
// them is a separate action.
func (c *Controller) TogglePause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return false
	}
	c.touchLocked()

	s.Paused = !s.Paused
	if s.Paused {
		c.setStateLocked(StatePaused)
	} else {
		c.setStateLocked(StateActive)
	}
	c.emitLocked(Event{Type: EventPauseChanged, SessionID: s.ID, Step: s.CurrentStep, Enabled: s.Paused, At: c.now()})
	return s.Paused
}

// ToggleVoice flips narration. Turning it off silences any read-out at once.
// The setting outlives the session.
func (c *Controller) ToggleVoice() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	c.voice = !c.voice
	if !c.voice {
		c.narrator.Stop()
	}

	ev := Event{Type: EventVoiceChanged, Enabled: c.voice, At: c.now()}
	if s := c.session; s != nil {
		s.VoiceEnabled = c.voice
		ev.SessionID = s.ID
		ev.Step = s.CurrentStep
	}
	c.emitLocked(ev)
	return c.voice
}

// End tears the session down. When completed is true the recipe's cooking
// stats are reported in the background; the returned channel yields the
// outcome of that report once and is otherwise nil. Teardown never waits on
// it.
func (c *Controller) End(completed bool) <-chan error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endLocked(completed)
}

func (c *Controller) endLocked(completed bool) <-chan error {
	result := make(chan error, 1)

	s := c.session
	if s == nil {
		close(result)
		return result
	}
	now := c.now()

	c.narrator.Stop()
	discarded := c.timers.Clear()
	c.fired = make(map[string]bool)
	c.stopWatcherLocked()

	if completed {
		c.setStateLocked(StateCompleted)
	}
	c.session = nil
	c.setStateLocked(StateIdle)
	c.touched = now

	c.logger.Info("cooking session ended",
		"session_id", s.ID,
		"recipe_id", s.RecipeID,
		"completed", completed,
		"step", s.CurrentStep,
		"discarded_timers", discarded,
	)
	c.emitLocked(Event{
		Type:      EventSessionEnded,
		SessionID: s.ID,
		RecipeID:  s.RecipeID,
		Step:      s.CurrentStep,
		Completed: completed,
		At:        now,
	})

	if !completed || c.reporter == nil {
		close(result)
		return result
	}

	stats := domain.NewCompletionStats(s, now)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(result)

		err := c.reporter.report(s.RecipeID, stats)
		if err != nil {
			c.mu.Lock()
			c.emitLocked(Event{
				Type:      EventWarning,
				SessionID: s.ID,
				RecipeID:  s.RecipeID,
				Message:   err.Error(),
				At:        c.now(),
			})
			c.mu.Unlock()
		}
		result <- err
	}()
	return result
}

// Wait blocks until every background completion report has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// AddTimer starts a countdown in the live session.
func (c *Controller) AddTimer(label string, d time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return "", ErrNoSession
	}
	c.touchLocked()

	id := c.timers.Add(label, d)
	c.logger.Debug("timer added", "timer_id", id, "label", label, "duration", d)
	return id, nil
}

// AddStepTimer starts a timer for the current step's suggested duration,
// labelled after the step.
func (c *Controller) AddStepTimer() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if s == nil {
		return "", ErrNoSession
	}
	d, ok := s.Current().Duration()
	if !ok {
		return "", ErrStepUntimed
	}
	c.touchLocked()

	return c.timers.Add(fmt.Sprintf("Step %d", s.CurrentStep+1), d), nil
}

// RemoveTimer is idempotent.
func (c *Controller) RemoveTimer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	c.timers.Remove(id)
	delete(c.fired, id)
}

func (c *Controller) PauseTimer(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
	return c.timers.Pause(id)
}

func (c *Controller) ResumeTimer(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
	return c.timers.Resume(id)
}

func (c *Controller) TimerRemaining(id string) (time.Duration, error) {
	return c.timers.Remaining(id, c.now())
}

func (c *Controller) Timers() []timers.View {
	return c.timers.List(c.now())
}

// IsSpeaking asks the narrator whether a read-out is in progress.
func (c *Controller) IsSpeaking(ctx context.Context) bool {
	return c.narrator.IsSpeaking(ctx)
}

// Snapshot is a copy of the controller state for display.
type Snapshot struct {
	State        State                  `json:"state"`
	VoiceEnabled bool                   `json:"voiceEnabled"`
	Session      *domain.CookingSession `json:"session,omitempty"`
	Progress     float64                `json:"progress"`
	Timers       []timers.View          `json:"timers"`
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:        c.state,
		VoiceEnabled: c.voice,
		Timers:       c.timers.List(c.now()),
	}
	if c.session != nil {
		snap.Session = c.session.Clone()
		snap.Progress = c.session.Progress()
	}
	return snap
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastActivity is the time of the most recent user operation.
func (c *Controller) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Subscribe registers an event channel. Slow readers miss events rather
// than block the controller.
func (c *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

func (c *Controller) Unsubscribe(ch <-chan Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, sub := range c.subs {
		if sub == ch {
			close(sub)
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// Subscribers reports how many event channels are registered.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close ends any live session without completing it and closes all
// subscriber channels.
func (c *Controller) Close() {
	c.mu.Lock()
	c.endLocked(false)
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

func (c *Controller) stepChangedLocked() {
	s := c.session
	c.narrator.Stop()
	if c.voice {
		c.narrator.Speak(s.Current().Instruction)
	}
	c.emitLocked(Event{Type: EventStepChanged, SessionID: s.ID, Step: s.CurrentStep, At: c.now()})
}

func (c *Controller) setStateLocked(next State) {
	if c.state == next {
		return
	}
	c.logger.Debug("controller state changed", "from", c.state, "to", next)
	c.state = next
}

func (c *Controller) touchLocked() {
	c.touched = c.now()
}

func (c *Controller) emitLocked(ev Event) {
	for _, ch := range c.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
