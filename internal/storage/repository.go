package storage

import (
	"context"
	"errors"

	"github.com/hperssn/sous/internal/domain"
)

var ErrRecipeNotFound = errors.New("recipe not found")

// Repository is the recipe store behind the cooking engine.
type Repository interface {
	domain.RecipeRepository

	SaveRecipe(ctx context.Context, recipe *domain.Recipe) error

	ListCompletions(ctx context.Context, recipeID string) ([]CompletionRecord, error)

	GetCookingStats(ctx context.Context) (*CookingStats, error)

	Close() error
}

type CookingStats struct {
	TotalCompletions int `json:"totalCompletions"`
	RecipesCooked    int `json:"recipesCooked"`
	TotalSteps       int `json:"totalSteps"`
}
