package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hperssn/sous/internal/domain"
	"github.com/hperssn/sous/internal/storage"
)

func backends(t *testing.T) map[string]storage.Repository {
	t.Helper()

	sqliteRepo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "sous.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqliteRepo.Close() })

	return map[string]storage.Repository{
		"memory": storage.NewMemoryRepository(),
		"sqlite": sqliteRepo,
	}
}

func sampleRecipe() *domain.Recipe {
	ten := 10
	return &domain.Recipe{
		ID:               "carbonara",
		Title:            "Carbonara",
		OriginalServings: 2,
		CurrentServings:  4,
		Steps: []domain.RecipeStep{
			{StepNumber: 1, Instruction: "Boil the pasta", DurationMinutes: &ten},
			{StepNumber: 2, Instruction: "Fry the guanciale", Temperature: "medium"},
		},
	}
}

func TestRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.SaveRecipe(ctx, sampleRecipe()); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := repo.GetRecipeByID(ctx, "carbonara")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Title != "Carbonara" || len(got.Steps) != 2 || got.CurrentServings != 4 {
				t.Fatalf("unexpected recipe: %+v", got)
			}
			if got.Steps[0].DurationMinutes == nil || *got.Steps[0].DurationMinutes != 10 {
				t.Fatalf("step duration lost: %+v", got.Steps[0])
			}
			if got.Steps[1].Temperature != "medium" || got.Steps[1].DurationMinutes != nil {
				t.Fatalf("unexpected second step: %+v", got.Steps[1])
			}
			if got.TimesCooked != 0 || got.LastCookedAt != nil {
				t.Fatalf("fresh recipe has cooking history: %+v", got)
			}
		})
	}
}

func TestRepository_ReturnedRecipesAreCopies(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			saved := sampleRecipe()
			if err := repo.SaveRecipe(ctx, saved); err != nil {
				t.Fatalf("save: %v", err)
			}
			*saved.Steps[0].DurationMinutes = 99

			got, err := repo.GetRecipeByID(ctx, "carbonara")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			*got.Steps[0].DurationMinutes = 42
			got.Steps[1].Instruction = "changed"

			again, err := repo.GetRecipeByID(ctx, "carbonara")
			if err != nil {
				t.Fatalf("get again: %v", err)
			}
			if *again.Steps[0].DurationMinutes != 10 || again.Steps[1].Instruction != "Fry the guanciale" {
				t.Fatalf("stored recipe was mutated through a returned copy: %+v", again.Steps)
			}
		})
	}
}

func TestRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.GetRecipeByID(ctx, "nope")
			if !errors.Is(err, storage.ErrRecipeNotFound) {
				t.Fatalf("err = %v, want ErrRecipeNotFound", err)
			}
		})
	}
}

func TestRepository_ReportCompletion(t *testing.T) {
	ctx := context.Background()
	started := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := repo.SaveRecipe(ctx, sampleRecipe()); err != nil {
				t.Fatalf("save: %v", err)
			}

			for i := 0; i < 2; i++ {
				stats := domain.CompletionStats{
					TimesCookedDelta: 1,
					StartedAt:        started,
					LastCookedAt:     started.Add(time.Duration(i+1) * time.Hour),
					StepCount:        2,
				}
				if err := repo.ReportCompletion(ctx, "carbonara", stats); err != nil {
					t.Fatalf("report %d: %v", i, err)
				}
			}

			got, err := repo.GetRecipeByID(ctx, "carbonara")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.TimesCooked != 2 {
				t.Fatalf("times cooked = %d, want 2", got.TimesCooked)
			}
			if got.LastCookedAt == nil || !got.LastCookedAt.Equal(started.Add(2*time.Hour)) {
				t.Fatalf("last cooked = %v", got.LastCookedAt)
			}

			log, err := repo.ListCompletions(ctx, "carbonara")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(log) != 2 || !log[0].CompletedAt.After(log[1].CompletedAt) {
				t.Fatalf("unexpected log order: %+v", log)
			}

			stats, err := repo.GetCookingStats(ctx)
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			if stats.TotalCompletions != 2 || stats.RecipesCooked != 1 || stats.TotalSteps != 4 {
				t.Fatalf("unexpected stats: %+v", stats)
			}

			// Re-importing keeps the history.
			if err := repo.SaveRecipe(ctx, sampleRecipe()); err != nil {
				t.Fatalf("resave: %v", err)
			}
			if again, _ := repo.GetRecipeByID(ctx, "carbonara"); again.TimesCooked != 2 {
				t.Fatalf("resave reset times cooked to %d", again.TimesCooked)
			}
		})
	}
}

func TestRepository_ReportCompletionUnknownRecipe(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := repo.ReportCompletion(ctx, "ghost", domain.CompletionStats{TimesCookedDelta: 1, LastCookedAt: time.Now()})
			if !errors.Is(err, storage.ErrRecipeNotFound) {
				t.Fatalf("err = %v, want ErrRecipeNotFound", err)
			}
			if log, _ := repo.ListCompletions(ctx, "ghost"); len(log) != 0 {
				t.Fatalf("failed report left a log row")
			}
		})
	}
}

func TestRepository_EmptyStats(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			stats, err := repo.GetCookingStats(ctx)
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			if *stats != (storage.CookingStats{}) {
				t.Fatalf("unexpected stats on empty store: %+v", stats)
			}
		})
	}
}
