package timers_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hperssn/sous/internal/clock"
	"github.com/hperssn/sous/internal/timers"
)

var epoch = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

func TestRegistry_AddAndRemaining(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := timers.NewRegistry(clk.Now)

	id := r.Add("Boil", 300*time.Second)

	got, err := r.Remaining(id, clk.Advance(120*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 180*time.Second {
		t.Fatalf("remaining = %v, want 180s", got)
	}
}

func TestRegistry_LargeJumpClampsToZero(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := timers.NewRegistry(clk.Now)

	id := r.Add("Boil", 300*time.Second)
	now := clk.Advance(301 * time.Second)

	got, err := r.Remaining(id, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("remaining = %v, want 0", got)
	}

	// Reads do not mutate.
	again, _ := r.Remaining(id, now)
	if again != 0 {
		t.Fatalf("second read = %v, want 0", again)
	}
	tm, _ := r.Get(id)
	if !tm.Active || tm.Duration != 300*time.Second {
		t.Fatalf("read mutated timer: %+v", tm)
	}
}

func TestRegistry_PauseResumeFreezes(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := timers.NewRegistry(clk.Now)

	id := r.Add("Rest", 100*time.Second)
	clk.Advance(40 * time.Second)

	if err := r.Pause(id); err != nil {
		t.Fatalf("pause: %v", err)
	}

	if got, _ := r.Remaining(id, clk.Advance(3*time.Hour)); got != 60*time.Second {
		t.Fatalf("paused remaining = %v, want 60s", got)
	}

	if err := r.Resume(id); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if got, _ := r.Remaining(id, clk.Now()); got != 60*time.Second {
		t.Fatalf("remaining at resume = %v, want 60s", got)
	}
	if got, _ := r.Remaining(id, clk.Advance(15*time.Second)); got != 45*time.Second {
		t.Fatalf("remaining after resume = %v, want 45s", got)
	}
}

func TestRegistry_PauseAndResumeAreIdempotent(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := timers.NewRegistry(clk.Now)

	id := r.Add("Rest", 100*time.Second)
	clk.Advance(10 * time.Second)
	_ = r.Pause(id)
	clk.Advance(10 * time.Second)
	_ = r.Pause(id)

	if got, _ := r.Remaining(id, clk.Now()); got != 90*time.Second {
		t.Fatalf("double pause remaining = %v, want 90s", got)
	}

	_ = r.Resume(id)
	clk.Advance(30 * time.Second)
	_ = r.Resume(id)

	if got, _ := r.Remaining(id, clk.Now()); got != 60*time.Second {
		t.Fatalf("double resume remaining = %v, want 60s", got)
	}
}

func TestRegistry_UnknownID(t *testing.T) {
	r := timers.NewRegistry(nil)

	r.Remove("missing")

	if err := r.Pause("missing"); !errors.Is(err, timers.ErrTimerNotFound) {
		t.Fatalf("pause err = %v", err)
	}
	if err := r.Resume("missing"); !errors.Is(err, timers.ErrTimerNotFound) {
		t.Fatalf("resume err = %v", err)
	}
	if _, err := r.Remaining("missing", time.Now()); !errors.Is(err, timers.ErrTimerNotFound) {
		t.Fatalf("remaining err = %v", err)
	}
}

func TestRegistry_ListOrderAndClear(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := timers.NewRegistry(clk.Now)

	a := r.Add("a", time.Minute)
	b := r.Add("b", 2*time.Minute)
	c := r.Add("c", 3*time.Minute)
	r.Remove(b)

	views := r.List(clk.Advance(30 * time.Second))
	if len(views) != 2 || views[0].ID != a || views[1].ID != c {
		t.Fatalf("unexpected list: %+v", views)
	}
	if views[1].Remaining != 150*time.Second {
		t.Fatalf("c remaining = %v, want 150s", views[1].Remaining)
	}
	if views[1].RemainingSeconds != 150 || views[1].DurationSeconds != 180 {
		t.Fatalf("c seconds = %d/%d, want 150/180", views[1].RemainingSeconds, views[1].DurationSeconds)
	}

	if n := r.Clear(); n != 2 {
		t.Fatalf("Clear() = %d, want 2", n)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry")
	}
}

func TestView_JSONUsesSeconds(t *testing.T) {
	clk := clock.NewManual(epoch)
	r := timers.NewRegistry(clk.Now)
	r.Add("Boil", 5*time.Minute)

	data, err := json.Marshal(r.List(clk.Advance(90500 * time.Millisecond)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 timer, got %d", len(got))
	}
	if got[0]["durationSeconds"] != float64(300) || got[0]["remainingSeconds"] != float64(209) {
		t.Fatalf("unexpected seconds: %v", got[0])
	}
	for _, key := range []string{"duration", "remaining"} {
		if _, ok := got[0][key]; ok {
			t.Fatalf("nanosecond field %q leaked into JSON: %s", key, data)
		}
	}
}
