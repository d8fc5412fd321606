package domain

import "time"

type Recipe struct {
	ID               string       `json:"id" toml:"id"`
	Title            string       `json:"title" toml:"title"`
	OriginalServings int          `json:"originalServings" toml:"original_servings"`
	CurrentServings  int          `json:"currentServings" toml:"current_servings"`
	Steps            []RecipeStep `json:"steps" toml:"steps"`
	TimesCooked      int          `json:"timesCooked" toml:"-"`
	LastCookedAt     *time.Time   `json:"lastCookedAt,omitempty" toml:"-"`
}

// ServingsFactor is informational only; scaling happens elsewhere.
func (r Recipe) ServingsFactor() float64 {
	if r.OriginalServings <= 0 || r.CurrentServings <= 0 {
		return 1
	}
	return float64(r.CurrentServings) / float64(r.OriginalServings)
}

// CompletionStats is what a finished session reports back to the recipe store.
type CompletionStats struct {
	TimesCookedDelta int       `json:"timesCookedDelta"`
	LastCookedAt     time.Time `json:"lastCookedAt"`
	StartedAt        time.Time `json:"startedAt"`
	StepCount        int       `json:"stepCount"`
}

func NewCompletionStats(s *CookingSession, now time.Time) CompletionStats {
	return CompletionStats{
		TimesCookedDelta: 1,
		LastCookedAt:     now,
		StartedAt:        s.StartedAt,
		StepCount:        len(s.Steps),
	}
}
