package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/pantrybase/ingredients/internal/domain"
	"github.com/pantrybase/ingredients/internal/usecase"
)

// MemoryCatalog is an in-memory ingredient catalog with exact and fuzzy
// lookup. Used for development and tests; fuzzy lookup scans every record
// with the shared similarity score, mirroring what pg_trgm does server-side
// in the Postgres catalog.
type MemoryCatalog struct {
	mu          sync.RWMutex
	ingredients []domain.CanonicalIngredient
	byName      map[string]string // normalized canonical name or alias -> id
}

// NewMemoryCatalog creates a catalog seeded with the given ingredients.
// Ingredients without an id are assigned one.
func NewMemoryCatalog(seed []domain.CanonicalIngredient) *MemoryCatalog {
	c := &MemoryCatalog{byName: make(map[string]string)}
	for _, ing := range seed {
		c.Add(ing)
	}
	return c
}

// Add inserts an ingredient, indexing its canonical name and aliases by
// normalized form. Returns the stored record.
func (c *MemoryCatalog) Add(ing domain.CanonicalIngredient) domain.CanonicalIngredient {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ing.ID == "" {
		ing.ID = uuid.NewString()
	}
	c.ingredients = append(c.ingredients, ing)
	if key := usecase.Normalize(ing.CanonicalName); key != "" {
		c.byName[key] = ing.ID
	}
	for _, alias := range ing.Aliases {
		if key := usecase.Normalize(alias); key != "" {
			if _, taken := c.byName[key]; !taken {
				c.byName[key] = ing.ID
			}
		}
	}
	return ing
}

// ExactLookup returns the id of the ingredient whose canonical name or alias
// equals the normalized name case-insensitively.
func (c *MemoryCatalog) ExactLookup(ctx context.Context, normalizedName string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, ok := c.byName[strings.ToLower(normalizedName)]; ok {
		return id, nil
	}
	return "", domain.ErrIngredientNotFound
}

// FuzzyLookup scores the normalized name against every canonical name and
// returns candidates at or above minScore, ordered by descending score then
// ascending canonical name.
func (c *MemoryCatalog) FuzzyLookup(ctx context.Context, normalizedName string, minScore float64) ([]domain.CatalogCandidate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var candidates []domain.CatalogCandidate
	for _, ing := range c.ingredients {
		key := usecase.Normalize(ing.CanonicalName)
		score := usecase.Similarity(normalizedName, key)
		if score >= minScore {
			candidates = append(candidates, domain.CatalogCandidate{
				ID:            ing.ID,
				CanonicalName: key,
				Score:         score,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CanonicalName < candidates[j].CanonicalName
	})
	return candidates, nil
}

// Len returns the number of catalog records.
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ingredients)
}
