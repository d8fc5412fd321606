package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hperssn/sous/internal/domain"
)

// MemoryRepository keeps recipes in process. Used for local runs and tests.
type MemoryRepository struct {
	mu          sync.RWMutex
	recipes     map[string]domain.Recipe
	completions []CompletionRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		recipes: make(map[string]domain.Recipe),
	}
}

func (m *MemoryRepository) SaveRecipe(_ context.Context, recipe *domain.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecipe(*recipe)
	if prev, ok := m.recipes[recipe.ID]; ok {
		stored.TimesCooked = prev.TimesCooked
		stored.LastCookedAt = prev.LastCookedAt
	} else {
		stored.TimesCooked = 0
		stored.LastCookedAt = nil
	}
	m.recipes[recipe.ID] = stored
	return nil
}

func (m *MemoryRepository) GetRecipeByID(_ context.Context, id string) (*domain.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.recipes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	out := cloneRecipe(r)
	return &out, nil
}

func (m *MemoryRepository) ReportCompletion(_ context.Context, recipeID string, stats domain.CompletionStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.recipes[recipeID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}
	r.TimesCooked += stats.TimesCookedDelta
	last := stats.LastCookedAt
	r.LastCookedAt = &last
	m.recipes[recipeID] = r

	m.completions = append(m.completions, newCompletionRecord(recipeID, stats))
	return nil
}

func (m *MemoryRepository) ListCompletions(_ context.Context, recipeID string) ([]CompletionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []CompletionRecord
	for _, c := range m.completions {
		if c.RecipeID == recipeID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (m *MemoryRepository) GetCookingStats(_ context.Context) (*CookingStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &CookingStats{TotalCompletions: len(m.completions)}
	seen := make(map[string]bool)
	for _, c := range m.completions {
		seen[c.RecipeID] = true
		stats.TotalSteps += c.StepCount
	}
	stats.RecipesCooked = len(seen)
	return stats, nil
}

func (m *MemoryRepository) Close() error {
	return nil
}

func cloneRecipe(r domain.Recipe) domain.Recipe {
	steps := make([]domain.RecipeStep, len(r.Steps))
	for i, st := range r.Steps {
		steps[i] = st.Clone()
	}
	r.Steps = steps
	if r.LastCookedAt != nil {
		t := *r.LastCookedAt
		r.LastCookedAt = &t
	}
	return r
}
