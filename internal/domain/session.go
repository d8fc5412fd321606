package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoSteps = errors.New("recipe has no steps")

type CookingSession struct {
	ID             string       `json:"id"`
	RecipeID       string       `json:"recipeId"`
	Title          string       `json:"title"`
	Steps          []RecipeStep `json:"steps"`
	CurrentStep    int          `json:"currentStep"`
	ServingsFactor float64      `json:"servingsFactor"`
	Paused         bool         `json:"paused"`
	VoiceEnabled   bool         `json:"voiceEnabled"`
	StartedAt      time.Time    `json:"startedAt"`
}

// NewCookingSession snapshots the recipe's steps so later edits to the recipe
// cannot leak into a running session.
func NewCookingSession(r Recipe, voice bool, now time.Time) (*CookingSession, error) {
	if len(r.Steps) == 0 {
		return nil, ErrNoSteps
	}

	steps := make([]RecipeStep, len(r.Steps))
	for i, st := range r.Steps {
		st = st.Clone()
		if st.StepNumber == 0 {
			st.StepNumber = i + 1
		}
		steps[i] = st
	}

	return &CookingSession{
		ID:             uuid.New().String(),
		RecipeID:       r.ID,
		Title:          r.Title,
		Steps:          steps,
		CurrentStep:    0,
		ServingsFactor: r.ServingsFactor(),
		VoiceEnabled:   voice,
		StartedAt:      now,
	}, nil
}

func (s *CookingSession) LastIndex() int {
	return len(s.Steps) - 1
}

func (s *CookingSession) Current() RecipeStep {
	return s.Steps[s.CurrentStep]
}

// Progress is the percentage of steps reached, counting the current one.
func (s *CookingSession) Progress() float64 {
	return float64(s.CurrentStep+1) / float64(len(s.Steps)) * 100
}

// Clone returns a copy safe to hand outside the owning controller.
func (s *CookingSession) Clone() *CookingSession {
	cp := *s
	cp.Steps = make([]RecipeStep, len(s.Steps))
	for i, st := range s.Steps {
		cp.Steps[i] = st.Clone()
	}
	return &cp
}
