package runner_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hperssn/sous/internal/clock"
	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/runner"
)

var epoch = time.Date(2026, 5, 10, 18, 30, 0, 0, time.UTC)

type fakeNarrator struct {
	mu        sync.Mutex
	calls     []string
	speaking  bool
	failSpeak bool
}

func (n *fakeNarrator) Speak(_ context.Context, text string, _ domain.SpeakOptions) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "speak:"+text)
	if n.failSpeak {
		return errors.New("tts unavailable")
	}
	n.speaking = true
	return nil
}

func (n *fakeNarrator) Stop(context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, "stop")
	n.speaking = false
	return nil
}

func (n *fakeNarrator) IsSpeaking(context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking, nil
}

func (n *fakeNarrator) take() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.calls
	n.calls = nil
	return out
}

type fakeRepo struct {
	mu       sync.Mutex
	recipes  map[string]domain.Recipe
	failures int
	calls    int
	reported []domain.CompletionStats
}

func (r *fakeRepo) GetRecipeByID(_ context.Context, id string) (*domain.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recipes[id]
	if !ok {
		return nil, fmt.Errorf("recipe %s: not found", id)
	}
	return &rec, nil
}

func (r *fakeRepo) ReportCompletion(_ context.Context, _ string, stats domain.CompletionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.failures {
		return errors.New("store unavailable")
	}
	r.reported = append(r.reported, stats)
	return nil
}

func (r *fakeRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func recipe(id string, n int) domain.Recipe {
	steps := make([]domain.RecipeStep, n)
	for i := range steps {
		steps[i] = domain.RecipeStep{StepNumber: i + 1, Instruction: fmt.Sprintf("%s step %d", id, i+1)}
	}
	return domain.Recipe{ID: id, Title: id, Steps: steps, OriginalServings: 2, CurrentServings: 2}
}

type harness struct {
	clk      *clock.Manual
	narrator *fakeNarrator
	repo     *fakeRepo
	ctrl     *runner.Controller
	events   <-chan runner.Event
}

func newHarness() *harness {
	h := &harness{
		clk:      clock.NewManual(epoch),
		narrator: &fakeNarrator{},
		repo:     &fakeRepo{recipes: map[string]domain.Recipe{}},
	}
	h.ctrl = runner.NewController(h.narrator, h.repo, runner.Options{
		Now:              h.clk.Now,
		VoiceEnabled:     true,
		TickInterval:     -1,
		ReportRetryDelay: time.Millisecond,
	})
	h.events = h.ctrl.Subscribe(256)
	return h
}

func (h *harness) drain() []runner.Event {
	var out []runner.Event
	for {
		select {
		case ev := <-h.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ofType(events []runner.Event, typ runner.EventType) []runner.Event {
	var out []runner.Event
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
