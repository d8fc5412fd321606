package domain

import "time"

// RecipeStep is a read-only snapshot of one instruction unit.
type RecipeStep struct {
	StepNumber      int    `json:"stepNumber" toml:"step_number"`
	Instruction     string `json:"instruction" toml:"instruction"`
	DurationMinutes *int   `json:"durationMinutes,omitempty" toml:"duration_minutes,omitempty"`
	Temperature     string `json:"temperature,omitempty" toml:"temperature,omitempty"`
}

// Clone copies the step without sharing the duration pointer.
func (s RecipeStep) Clone() RecipeStep {
	if s.DurationMinutes != nil {
		d := *s.DurationMinutes
		s.DurationMinutes = &d
	}
	return s
}

// Duration reports the step's suggested timer length, if it has one.
func (s RecipeStep) Duration() (time.Duration, bool) {
	if s.DurationMinutes == nil || *s.DurationMinutes <= 0 {
		return 0, false
	}
	return time.Duration(*s.DurationMinutes) * time.Minute, true
}
