package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/hperssn/sous/internal/domain"
)

// CompletionRecord is one finished cooking session.
type CompletionRecord struct {
	ID          string    `json:"id"`
	RecipeID    string    `json:"recipeId"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	StepCount   int       `json:"stepCount"`
}

func newCompletionRecord(recipeID string, stats domain.CompletionStats) CompletionRecord {
	return CompletionRecord{
		ID:          uuid.New().String(),
		RecipeID:    recipeID,
		StartedAt:   stats.StartedAt,
		CompletedAt: stats.LastCookedAt,
		StepCount:   stats.StepCount,
	}
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (*domain.Recipe, error) {
	var (
		r          domain.Recipe
		stepsJSON  []byte
		lastCooked sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.Title,
		&r.OriginalServings,
		&r.CurrentServings,
		&stepsJSON,
		&r.TimesCooked,
		&lastCooked,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stepsJSON, &r.Steps); err != nil {
		return nil, err
	}
	if lastCooked.Valid {
		t := lastCooked.Time
		r.LastCookedAt = &t
	}
	return &r, nil
}

func scanCompletions(rows *sql.Rows) ([]CompletionRecord, error) {
	var records []CompletionRecord

	for rows.Next() {
		var rec CompletionRecord
		if err := rows.Scan(&rec.ID, &rec.RecipeID, &rec.StartedAt, &rec.CompletedAt, &rec.StepCount); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
