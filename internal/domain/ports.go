package domain

import "context"

// RecipeRepository is the external recipe store a session reads from and
// reports completions to.
type RecipeRepository interface {
	GetRecipeByID(ctx context.Context, id string) (*Recipe, error)
	ReportCompletion(ctx context.Context, recipeID string, stats CompletionStats) error
}

// SpeakOptions tunes a single utterance.
type SpeakOptions struct {
	Language string  `json:"language"`
	Rate     float64 `json:"rate"`
}

// Narrator is a text-to-speech engine. Speak must return without waiting for
// the speech to finish.
type Narrator interface {
	Speak(ctx context.Context, text string, opts SpeakOptions) error
	Stop(ctx context.Context) error
	IsSpeaking(ctx context.Context) (bool, error)
}
