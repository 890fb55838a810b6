package domain

import "time"

// MatchRecord is a persisted memo of a prior text-to-ingredient resolution.
// At most one live record exists per normalized text (upsert semantics); rows
// are never deleted, only updated in place.
type MatchRecord struct {
	NormalizedText string    `json:"normalizedText"`
	IngredientID   string    `json:"ingredientId,omitempty"`
	MatchType      MatchType `json:"matchType"`
	Confidence     float64   `json:"confidence"`
	UserConfirmed  bool      `json:"userConfirmed"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
