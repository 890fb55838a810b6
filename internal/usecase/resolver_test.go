package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/pantrybase/ingredients/internal/domain"
)

// stubCatalog is a scriptable catalog for resolver tests.
type stubCatalog struct {
	exact      map[string]string
	candidates []domain.CatalogCandidate
	err        error
}

func (c *stubCatalog) ExactLookup(ctx context.Context, name string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	if id, ok := c.exact[name]; ok {
		return id, nil
	}
	return "", domain.ErrIngredientNotFound
}

func (c *stubCatalog) FuzzyLookup(ctx context.Context, name string, minScore float64) ([]domain.CatalogCandidate, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.CatalogCandidate
	for _, cand := range c.candidates {
		if cand.Score >= minScore {
			out = append(out, cand)
		}
	}
	return out, nil
}

// stubStore is an in-memory match store that can simulate faults.
type stubStore struct {
	records map[string]domain.MatchRecord
	getErr  error
	putErr  error
}

func newStubStore() *stubStore {
	return &stubStore{records: make(map[string]domain.MatchRecord)}
}

func (s *stubStore) GetByNormalizedText(ctx context.Context, text string) (*domain.MatchRecord, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if rec, ok := s.records[text]; ok {
		return &rec, nil
	}
	return nil, domain.ErrCacheMiss
}

func (s *stubStore) Upsert(ctx context.Context, record domain.MatchRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.records[record.NormalizedText] = record
	return nil
}

func (s *stubStore) Confirm(ctx context.Context, text, ingredientID string) error {
	s.records[text] = domain.MatchRecord{
		NormalizedText: text,
		IngredientID:   ingredientID,
		MatchType:      domain.MatchCached,
		Confidence:     1.0,
		UserConfirmed:  true,
	}
	return nil
}

func newTestResolver(catalog domain.Catalog, store domain.MatchStore) *Resolver {
	return NewResolver(catalog, store, ResolverConfig{}, nil)
}

func TestResolveExactTier(t *testing.T) {
	ctx := context.Background()

	t.Run("case-insensitive exact match has full confidence", func(t *testing.T) {
		store := newStubStore()
		resolver := newTestResolver(&stubCatalog{exact: map[string]string{"garlic": "ing-1"}}, store)

		outcome, err := resolver.Resolve(ctx, "Garlic")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.MatchType != domain.MatchExact {
			t.Errorf("MatchType = %s, want exact", outcome.MatchType)
		}
		if outcome.Confidence != 1.0 {
			t.Errorf("Confidence = %v, want 1.0", outcome.Confidence)
		}
		if outcome.NeedsReview {
			t.Error("NeedsReview = true, want false")
		}
		if outcome.IngredientID != "ing-1" {
			t.Errorf("IngredientID = %s, want ing-1", outcome.IngredientID)
		}
	})

	t.Run("exact match writes through to the cache unconfirmed", func(t *testing.T) {
		store := newStubStore()
		resolver := newTestResolver(&stubCatalog{exact: map[string]string{"garlic": "ing-1"}}, store)

		if _, err := resolver.Resolve(ctx, "garlic"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec, ok := store.records["garlic"]
		if !ok {
			t.Fatal("expected a write-through cache record")
		}
		if rec.UserConfirmed {
			t.Error("write-through record must not be user-confirmed")
		}
		if rec.MatchType != domain.MatchExact {
			t.Errorf("cached MatchType = %s, want exact", rec.MatchType)
		}
	})
}

func TestResolveCachedTier(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed record wins regardless of catalog state", func(t *testing.T) {
		store := newStubStore()
		if err := store.Confirm(ctx, "chiken", "ing-7"); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		// Catalog knows nothing about "chiken".
		resolver := newTestResolver(&stubCatalog{}, store)

		for _, mention := range []string{"chiken", "Chiken"} {
			outcome, err := resolver.Resolve(ctx, mention)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if outcome.MatchType != domain.MatchCached {
				t.Errorf("Resolve(%q) MatchType = %s, want cached", mention, outcome.MatchType)
			}
			if outcome.IngredientID != "ing-7" {
				t.Errorf("Resolve(%q) IngredientID = %s, want ing-7", mention, outcome.IngredientID)
			}
			if outcome.NeedsReview {
				t.Errorf("Resolve(%q) NeedsReview = true, want false", mention)
			}
		}
	})

	t.Run("unconfirmed record does not satisfy the cached tier", func(t *testing.T) {
		store := newStubStore()
		store.records["garlic"] = domain.MatchRecord{
			NormalizedText: "garlic",
			IngredientID:   "stale",
			MatchType:      domain.MatchFuzzy,
			Confidence:     0.9,
		}
		resolver := newTestResolver(&stubCatalog{exact: map[string]string{"garlic": "ing-1"}}, store)

		outcome, err := resolver.Resolve(ctx, "garlic")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.MatchType != domain.MatchExact || outcome.IngredientID != "ing-1" {
			t.Errorf("outcome = %+v, want exact ing-1", outcome)
		}
	})
}

func TestResolveFuzzyTier(t *testing.T) {
	ctx := context.Background()

	t.Run("score above high threshold needs no review", func(t *testing.T) {
		catalog := &stubCatalog{candidates: []domain.CatalogCandidate{
			{ID: "ing-2", CanonicalName: "chicken breast", Score: 0.92},
		}}
		store := newStubStore()
		resolver := newTestResolver(catalog, store)

		outcome, err := resolver.Resolve(ctx, "chicken brest")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.MatchType != domain.MatchFuzzy {
			t.Errorf("MatchType = %s, want fuzzy", outcome.MatchType)
		}
		if outcome.NeedsReview {
			t.Error("NeedsReview = true, want false for score above high threshold")
		}
		if outcome.Confidence != 0.92 {
			t.Errorf("Confidence = %v, want 0.92", outcome.Confidence)
		}
		if _, ok := store.records["chicken brest"]; !ok {
			t.Error("fuzzy outcome should write through to the cache")
		}
	})

	t.Run("score between medium and high needs review", func(t *testing.T) {
		catalog := &stubCatalog{candidates: []domain.CatalogCandidate{
			{ID: "ing-2", CanonicalName: "chicken breast", Score: 0.7},
		}}
		resolver := newTestResolver(catalog, newStubStore())

		outcome, err := resolver.Resolve(ctx, "some poultry cut")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.MatchType != domain.MatchFuzzy {
			t.Errorf("MatchType = %s, want fuzzy", outcome.MatchType)
		}
		if !outcome.NeedsReview {
			t.Error("NeedsReview = false, want true for medium-confidence score")
		}
	})

	t.Run("ties break on lexicographically smaller canonical name", func(t *testing.T) {
		catalog := &stubCatalog{candidates: []domain.CatalogCandidate{
			{ID: "ing-b", CanonicalName: "butterbean", Score: 0.9},
			{ID: "ing-a", CanonicalName: "butter", Score: 0.9},
		}}
		resolver := newTestResolver(catalog, newStubStore())

		outcome, err := resolver.Resolve(ctx, "buttr")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.IngredientID != "ing-a" {
			t.Errorf("IngredientID = %s, want ing-a (lexicographic tie-break)", outcome.IngredientID)
		}
	})
}

func TestResolveNoneTier(t *testing.T) {
	ctx := context.Background()

	t.Run("no candidate above medium threshold", func(t *testing.T) {
		store := newStubStore()
		resolver := newTestResolver(&stubCatalog{exact: map[string]string{"chicken breast": "ing-2"}}, store)

		outcome, err := resolver.Resolve(ctx, "xyzabc123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.MatchType != domain.MatchNone {
			t.Errorf("MatchType = %s, want none", outcome.MatchType)
		}
		if outcome.IngredientID != "" {
			t.Errorf("IngredientID = %s, want empty", outcome.IngredientID)
		}
		if !outcome.NeedsReview {
			t.Error("NeedsReview = false, want true")
		}
		if len(store.records) != 0 {
			t.Error("none outcomes must not be cached")
		}
	})

	t.Run("catalog fault degrades to none instead of erroring", func(t *testing.T) {
		resolver := newTestResolver(&stubCatalog{err: errors.New("connection refused")}, newStubStore())

		outcome, err := resolver.Resolve(ctx, "garlic")
		if err != nil {
			t.Fatalf("fault must not surface as error, got: %v", err)
		}
		if outcome.MatchType != domain.MatchNone || !outcome.NeedsReview {
			t.Errorf("outcome = %+v, want none/needs-review", outcome)
		}
	})

	t.Run("cache write failure does not change the outcome", func(t *testing.T) {
		store := newStubStore()
		store.putErr = errors.New("disk full")
		resolver := newTestResolver(&stubCatalog{exact: map[string]string{"garlic": "ing-1"}}, store)

		outcome, err := resolver.Resolve(ctx, "garlic")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.MatchType != domain.MatchExact {
			t.Errorf("MatchType = %s, want exact", outcome.MatchType)
		}
	})
}

func TestResolveEmptyMention(t *testing.T) {
	resolver := newTestResolver(&stubCatalog{}, newStubStore())

	_, err := resolver.Resolve(context.Background(), "!!!")
	if !errors.Is(err, domain.ErrEmptyMention) {
		t.Errorf("error = %v, want ErrEmptyMention", err)
	}
}

func TestResolveMentions(t *testing.T) {
	ctx := context.Background()

	t.Run("order-preserving with independent outcomes", func(t *testing.T) {
		catalog := &stubCatalog{exact: map[string]string{
			"chicken broth": "ing-broth",
			"onion":         "ing-onion",
		}}
		resolver := newTestResolver(catalog, newStubStore())

		outcomes := resolver.ResolveMentions(ctx, []string{
			"2 cups chicken broth",
			"1 onion, diced",
			"xyzzyqux spice",
		})
		if len(outcomes) != 3 {
			t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
		}
		if outcomes[0].IngredientID != "ing-broth" || outcomes[0].NeedsReview {
			t.Errorf("outcomes[0] = %+v, want resolved chicken broth", outcomes[0])
		}
		if outcomes[1].IngredientID != "ing-onion" || outcomes[1].NeedsReview {
			t.Errorf("outcomes[1] = %+v, want resolved onion", outcomes[1])
		}
		if outcomes[2].MatchType != domain.MatchNone || !outcomes[2].NeedsReview {
			t.Errorf("outcomes[2] = %+v, want unresolved", outcomes[2])
		}
		if !domain.AnyNeedsReview(outcomes) {
			t.Error("import item with one unresolved mention must need review")
		}
	})

	t.Run("mentions normalizing to empty are dropped", func(t *testing.T) {
		catalog := &stubCatalog{exact: map[string]string{"onion": "ing-onion"}}
		resolver := newTestResolver(catalog, newStubStore())

		outcomes := resolver.ResolveMentions(ctx, []string{"---", "onion"})
		if len(outcomes) != 1 {
			t.Fatalf("len(outcomes) = %d, want 1", len(outcomes))
		}
		if outcomes[0].Mention != "onion" {
			t.Errorf("Mention = %q, want onion", outcomes[0].Mention)
		}
	})

	t.Run("all mentions resolved means no review", func(t *testing.T) {
		catalog := &stubCatalog{exact: map[string]string{"onion": "ing-onion"}}
		resolver := newTestResolver(catalog, newStubStore())

		outcomes := resolver.ResolveMentions(ctx, []string{"onion", "1 onion"})
		if domain.AnyNeedsReview(outcomes) {
			t.Error("fully resolved import must not need review")
		}
	})
}
