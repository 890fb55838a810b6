package domain

import "context"

// Catalog defines the lookup capability the resolver consumes. The catalog
// itself (seeding, snapshots, review workflow) is owned by the storage layer.
type Catalog interface {
	// ExactLookup returns the id of the ingredient whose canonical name or
	// alias equals the normalized name case-insensitively, or
	// ErrIngredientNotFound.
	ExactLookup(ctx context.Context, normalizedName string) (string, error)

	// FuzzyLookup returns candidates scoring at least minScore against the
	// normalized name, ordered by descending score then ascending canonical
	// name. An empty slice means no candidate cleared minScore.
	FuzzyLookup(ctx context.Context, normalizedName string, minScore float64) ([]CatalogCandidate, error)
}

// MatchStore persists match records keyed by normalized text.
type MatchStore interface {
	// GetByNormalizedText returns the live record for the text, or ErrCacheMiss.
	GetByNormalizedText(ctx context.Context, normalizedText string) (*MatchRecord, error)

	// Upsert inserts or updates the record for record.NormalizedText.
	// Idempotent; concurrent writers racing on the same key are benign
	// because identical inputs produce identical rows.
	Upsert(ctx context.Context, record MatchRecord) error

	// Confirm marks the record for the text as user-confirmed, pointing at
	// ingredientID with full confidence. Only confirmed rows satisfy the
	// resolver's cached tier.
	Confirm(ctx context.Context, normalizedText, ingredientID string) error
}
