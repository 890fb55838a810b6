package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pantrybase/ingredients/internal/domain"
)

// Catalog is the Postgres-backed ingredient catalog. Fuzzy lookup runs
// server-side on the pg_trgm similarity operator, backed by a GIN trigram
// index, so the resolver never pages the whole catalog over the wire.
type Catalog struct {
	db *sql.DB
}

// NewCatalog wraps an open database handle.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// ExactLookup returns the id of the ingredient whose canonical name or alias
// equals the normalized name case-insensitively.
func (c *Catalog) ExactLookup(ctx context.Context, normalizedName string) (string, error) {
	const q = `
		SELECT id FROM ingredients
		WHERE lower(canonical_name) = lower($1)
		   OR EXISTS (
			SELECT 1 FROM unnest(aliases) AS a WHERE lower(a) = lower($1)
		   )
		ORDER BY canonical_name ASC
		LIMIT 1`

	var id string
	err := c.db.QueryRowContext(ctx, q, normalizedName).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrIngredientNotFound
	}
	if err != nil {
		return "", fmt.Errorf("exact lookup: %w", err)
	}
	return id, nil
}

// FuzzyLookup returns candidates whose trigram similarity to the normalized
// name is at least minScore, ordered by descending score then ascending
// canonical name.
func (c *Catalog) FuzzyLookup(ctx context.Context, normalizedName string, minScore float64) ([]domain.CatalogCandidate, error) {
	const q = `
		SELECT id, canonical_name, similarity(lower(canonical_name), lower($1)) AS score
		FROM ingredients
		WHERE similarity(lower(canonical_name), lower($1)) >= $2
		ORDER BY score DESC, canonical_name ASC
		LIMIT 20`

	rows, err := c.db.QueryContext(ctx, q, normalizedName, minScore)
	if err != nil {
		return nil, fmt.Errorf("fuzzy lookup: %w", err)
	}
	defer rows.Close()

	var candidates []domain.CatalogCandidate
	for rows.Next() {
		var cand domain.CatalogCandidate
		if err := rows.Scan(&cand.ID, &cand.CanonicalName, &cand.Score); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fuzzy lookup rows: %w", err)
	}
	return candidates, nil
}

// Insert stores a new catalog record and returns it with the generated id.
// Used by catalog seeding and by the import workflow's create-as-pending path.
func (c *Catalog) Insert(ctx context.Context, ing domain.CanonicalIngredient) (domain.CanonicalIngredient, error) {
	const q = `
		INSERT INTO ingredients
			(canonical_name, aliases, category, default_unit, flavor_profile,
			 is_canonical, pending_review)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := c.db.QueryRowContext(ctx, q,
		ing.CanonicalName,
		pq.Array(ing.Aliases),
		nullable(ing.Category),
		nullable(ing.DefaultUnit),
		pq.Array(ing.FlavorProfile),
		ing.IsCanonical,
		ing.PendingReview,
	).Scan(&ing.ID)
	if err != nil {
		return domain.CanonicalIngredient{}, fmt.Errorf("insert ingredient: %w", err)
	}
	return ing, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
