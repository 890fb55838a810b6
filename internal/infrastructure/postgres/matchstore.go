package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pantrybase/ingredients/internal/domain"
)

// MatchStore is the Postgres-backed match store. The primary key on
// normalized_text enforces the one-live-record-per-text invariant; ON
// CONFLICT makes concurrent upserts on the same key last-writer-wins, which
// is benign because identical inputs produce identical rows.
type MatchStore struct {
	db *sql.DB
}

// NewMatchStore wraps an open database handle.
func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

// GetByNormalizedText returns the live record for the text.
func (s *MatchStore) GetByNormalizedText(ctx context.Context, normalizedText string) (*domain.MatchRecord, error) {
	const q = `
		SELECT normalized_text, COALESCE(ingredient_id::text, ''), match_type,
		       confidence, user_confirmed, created_at, updated_at
		FROM ingredient_matches
		WHERE normalized_text = $1`

	var rec domain.MatchRecord
	err := s.db.QueryRowContext(ctx, q, normalizedText).Scan(
		&rec.NormalizedText, &rec.IngredientID, &rec.MatchType,
		&rec.Confidence, &rec.UserConfirmed, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get match record: %w", err)
	}
	return &rec, nil
}

// Upsert inserts or updates the row for record.NormalizedText. Confirmed
// rows are never downgraded by derived write-throughs.
func (s *MatchStore) Upsert(ctx context.Context, record domain.MatchRecord) error {
	const q = `
		INSERT INTO ingredient_matches
			(normalized_text, ingredient_id, match_type, confidence, user_confirmed)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5)
		ON CONFLICT (normalized_text) DO UPDATE SET
			ingredient_id  = EXCLUDED.ingredient_id,
			match_type     = EXCLUDED.match_type,
			confidence     = EXCLUDED.confidence,
			user_confirmed = EXCLUDED.user_confirmed,
			updated_at     = now()
		WHERE ingredient_matches.user_confirmed = FALSE
		   OR EXCLUDED.user_confirmed = TRUE`

	_, err := s.db.ExecContext(ctx, q,
		record.NormalizedText, record.IngredientID, string(record.MatchType),
		record.Confidence, record.UserConfirmed,
	)
	if err != nil {
		return fmt.Errorf("upsert match record: %w", err)
	}
	return nil
}

// Confirm marks the row for the text as user-confirmed with full confidence,
// creating it if absent.
func (s *MatchStore) Confirm(ctx context.Context, normalizedText, ingredientID string) error {
	return s.Upsert(ctx, domain.MatchRecord{
		NormalizedText: normalizedText,
		IngredientID:   ingredientID,
		MatchType:      domain.MatchCached,
		Confidence:     1.0,
		UserConfirmed:  true,
	})
}
