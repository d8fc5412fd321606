package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hperssn/sous/internal/domain"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// Serialize writers; sqlite allows only one at a time anyway.
	db.SetMaxOpenConns(1)

	repo := &SQLiteRepository{db: db}
	if err := repo.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		original_servings INTEGER NOT NULL DEFAULT 0,
		current_servings INTEGER NOT NULL DEFAULT 0,
		steps_json TEXT NOT NULL,
		times_cooked INTEGER NOT NULL DEFAULT 0,
		last_cooked_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS cooking_log (
		id TEXT PRIMARY KEY,
		recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
		started_at DATETIME NOT NULL,
		completed_at DATETIME NOT NULL,
		step_count INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cooking_log_recipe ON cooking_log(recipe_id);
	CREATE INDEX IF NOT EXISTS idx_cooking_log_completed_at ON cooking_log(completed_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRepository) SaveRecipe(ctx context.Context, recipe *domain.Recipe) error {
	stepsJSON, err := json.Marshal(recipe.Steps)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recipes (id, title, original_servings, current_servings, steps_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			original_servings = excluded.original_servings,
			current_servings = excluded.current_servings,
			steps_json = excluded.steps_json
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		recipe.ID,
		recipe.Title,
		recipe.OriginalServings,
		recipe.CurrentServings,
		string(stepsJSON),
	)

	return err
}

func (r *SQLiteRepository) GetRecipeByID(ctx context.Context, id string) (*domain.Recipe, error) {
	query := `
		SELECT id, title, original_servings, current_servings, steps_json, times_cooked, last_cooked_at
		FROM recipes
		WHERE id = ?
	`

	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	}
	return recipe, err
}

func (r *SQLiteRepository) ReportCompletion(ctx context.Context, recipeID string, stats domain.CompletionStats) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE recipes
		SET times_cooked = times_cooked + ?, last_cooked_at = ?
		WHERE id = ?
	`, stats.TimesCookedDelta, stats.LastCookedAt, recipeID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}

	rec := newCompletionRecord(recipeID, stats)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cooking_log (id, recipe_id, started_at, completed_at, step_count)
		VALUES (?, ?, ?, ?, ?)
	`, rec.ID, rec.RecipeID, rec.StartedAt, rec.CompletedAt, rec.StepCount)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, recipeID string) ([]CompletionRecord, error) {
	query := `
		SELECT id, recipe_id, started_at, completed_at, step_count
		FROM cooking_log
		WHERE recipe_id = ?
		ORDER BY completed_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCompletions(rows)
}

func (r *SQLiteRepository) GetCookingStats(ctx context.Context) (*CookingStats, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(DISTINCT recipe_id) AS recipes,
			SUM(step_count) AS steps
		FROM cooking_log
	`

	var stats CookingStats
	var steps sql.NullInt64

	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalCompletions,
		&stats.RecipesCooked,
		&steps,
	)
	if err != nil {
		return nil, err
	}

	if steps.Valid {
		stats.TotalSteps = int(steps.Int64)
	}

	return &stats, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
