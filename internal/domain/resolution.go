package domain

// MatchType describes which tier of the resolution strategy produced a match.
type MatchType string

// Match types, in tier order.
const (
	MatchCached MatchType = "cached"
	MatchExact  MatchType = "exact"
	MatchFuzzy  MatchType = "fuzzy"
	MatchNone   MatchType = "none"
)

// Resolution is the outcome of resolving one ingredient mention. Construct
// values through ResolvedCached, ResolvedExact, ResolvedFuzzy and Unresolved
// so that confidence and NeedsReview stay consistent with the match type
// (an exact match can never carry confidence below 1.0, a none outcome can
// never carry an ingredient id).
type Resolution struct {
	Mention      string    `json:"mention"`
	IngredientID string    `json:"ingredientId,omitempty"`
	Confidence   float64   `json:"confidence"`
	MatchType    MatchType `json:"matchType"`
	NeedsReview  bool      `json:"needsReview"`
}

// ResolvedCached builds the outcome for a user-confirmed cache hit. The
// stored confidence is carried over and the match never needs review.
func ResolvedCached(mention, ingredientID string, confidence float64) Resolution {
	return Resolution{
		Mention:      mention,
		IngredientID: ingredientID,
		Confidence:   confidence,
		MatchType:    MatchCached,
	}
}

// ResolvedExact builds the outcome for a case-insensitive canonical-name hit.
func ResolvedExact(mention, ingredientID string) Resolution {
	return Resolution{
		Mention:      mention,
		IngredientID: ingredientID,
		Confidence:   1.0,
		MatchType:    MatchExact,
	}
}

// ResolvedFuzzy builds the outcome for a similarity match. needsReview is
// derived by the caller from the configured confidence thresholds.
func ResolvedFuzzy(mention, ingredientID string, score float64, needsReview bool) Resolution {
	return Resolution{
		Mention:      mention,
		IngredientID: ingredientID,
		Confidence:   score,
		MatchType:    MatchFuzzy,
		NeedsReview:  needsReview,
	}
}

// Unresolved builds the outcome for a mention no tier could match. It always
// needs review and carries no ingredient id.
func Unresolved(mention string) Resolution {
	return Resolution{
		Mention:     mention,
		Confidence:  0,
		MatchType:   MatchNone,
		NeedsReview: true,
	}
}

// AnyNeedsReview reports whether at least one outcome requires human review.
// Import workflows use this to route a whole item to the review queue.
func AnyNeedsReview(outcomes []Resolution) bool {
	for _, o := range outcomes {
		if o.NeedsReview {
			return true
		}
	}
	return false
}
