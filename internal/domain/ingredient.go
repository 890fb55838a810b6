package domain

// CanonicalIngredient is the single authoritative catalog record for a
// real-world ingredient. Canonical names are unique case-insensitively.
type CanonicalIngredient struct {
	ID            string   `json:"id"`
	CanonicalName string   `json:"canonicalName"`
	Aliases       []string `json:"aliases,omitempty"`
	Category      string   `json:"category,omitempty"`
	DefaultUnit   string   `json:"defaultUnit,omitempty"`
	FlavorProfile []string `json:"flavorProfile,omitempty"`
	IsCanonical   bool     `json:"isCanonical"`
	PendingReview bool     `json:"pendingReview"`
	ParentID      string   `json:"parentId,omitempty"` // variant hierarchies (e.g. "cherry tomato" -> "tomato")
}

// ScrapedRecord is one ingredient record emitted by a scraper run. It has the
// same shape as CanonicalIngredient plus provenance, and only lives inside a
// single offline pipeline run.
type ScrapedRecord struct {
	CanonicalName string   `json:"canonicalName"`
	Source        string   `json:"source"`
	SourceID      string   `json:"sourceId,omitempty"`
	Aliases       []string `json:"aliases,omitempty"`
	Category      string   `json:"category,omitempty"`
	Description   string   `json:"description,omitempty"`
	FlavorProfile []string `json:"flavorProfile,omitempty"`
	DefaultUnit   string   `json:"defaultUnit,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	IsCanonical   bool     `json:"isCanonical"`
	PendingReview bool     `json:"pendingReview"`
}

// CatalogCandidate is one ranked result from a fuzzy catalog lookup.
type CatalogCandidate struct {
	ID            string
	CanonicalName string
	Score         float64
}
