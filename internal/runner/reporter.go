package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hperssn/sous/internal/domain"
)

// reportAttempts is the first try plus a single retry.
const reportAttempts = 2

type reporter struct {
	repo       domain.RecipeRepository
	retryDelay time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

func (r *reporter) report(recipeID string, stats domain.CompletionStats) error {
	var err error
	for attempt := 1; attempt <= reportAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		err = r.repo.ReportCompletion(ctx, recipeID, stats)
		cancel()

		if err == nil {
			r.logger.Info("completion reported", "recipe_id", recipeID, "attempt", attempt)
			return nil
		}
		r.logger.Warn("completion report failed",
			"recipe_id", recipeID,
			"attempt", attempt,
			"error", err,
		)
		if attempt < reportAttempts {
			time.Sleep(r.retryDelay)
		}
	}
	return fmt.Errorf("report completion for recipe %s: %w", recipeID, err)
}
