package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pantrybase/ingredients/internal/domain"
)

// Shared confidence thresholds. Every resolving component (the live import
// resolver and the offline evaluation path) must read the same pair so that
// production and evaluation behavior cannot drift apart.
const (
	// DefaultHighConfidence is the fuzzy score above which a match is
	// accepted without review.
	DefaultHighConfidence = 0.85

	// DefaultMediumConfidence is the fuzzy score above which a match is
	// surfaced at all; scores at or below it resolve to the none tier.
	DefaultMediumConfidence = 0.5

	// DefaultLookupTimeout bounds a single catalog lookup.
	DefaultLookupTimeout = 5 * time.Second
)

// ResolverConfig holds tuning for the resolver.
type ResolverConfig struct {
	HighConfidence   float64
	MediumConfidence float64
	LookupTimeout    time.Duration
}

// Resolver maps free-text ingredient mentions onto canonical catalog records
// using a tiered strategy: confirmed cache hit, exact name match, fuzzy
// similarity, then none. Stateless apart from the shared match store; any
// number of Resolve calls may run concurrently.
type Resolver struct {
	catalog domain.Catalog
	matches domain.MatchStore
	high    float64
	medium  float64
	timeout time.Duration
	log     *zap.Logger
}

// NewResolver creates a resolver with explicit dependencies. Zero config
// fields fall back to the shared defaults.
func NewResolver(catalog domain.Catalog, matches domain.MatchStore, cfg ResolverConfig, log *zap.Logger) *Resolver {
	if cfg.HighConfidence <= 0 {
		cfg.HighConfidence = DefaultHighConfidence
	}
	if cfg.MediumConfidence <= 0 {
		cfg.MediumConfidence = DefaultMediumConfidence
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		catalog: catalog,
		matches: matches,
		high:    cfg.HighConfidence,
		medium:  cfg.MediumConfidence,
		timeout: cfg.LookupTimeout,
		log:     log,
	}
}

// Resolve decides which catalog entry a single mention refers to. Lookup
// faults and timeouts degrade to the none tier (needs review) rather than
// returning an error; resolution failure is a business outcome, not a crash.
// Returns domain.ErrEmptyMention when the mention normalizes to nothing.
func (r *Resolver) Resolve(ctx context.Context, mention string) (domain.Resolution, error) {
	normalized := NormalizeMention(mention)
	if normalized == "" {
		return domain.Resolution{}, domain.ErrEmptyMention
	}
	return r.resolveNormalized(ctx, mention, normalized), nil
}

// ResolveMentions resolves a batch of mentions, order-preserving and
// independent per element: one mention's failure never aborts the others.
// Mentions that normalize to the empty string are dropped from the output
// (callers should pre-filter; the count is logged for visibility).
func (r *Resolver) ResolveMentions(ctx context.Context, mentions []string) []domain.Resolution {
	outcomes := make([]domain.Resolution, 0, len(mentions))
	skipped := 0
	for _, m := range mentions {
		normalized := NormalizeMention(m)
		if normalized == "" {
			skipped++
			continue
		}
		outcomes = append(outcomes, r.resolveNormalized(ctx, m, normalized))
	}
	if skipped > 0 {
		r.log.Debug("skipped unnormalizable mentions", zap.Int("count", skipped))
	}
	return outcomes
}

func (r *Resolver) resolveNormalized(ctx context.Context, mention, normalized string) domain.Resolution {
	// Tier 1: user-confirmed cache hit. A human correction sticks permanently.
	if rec, err := r.matches.GetByNormalizedText(ctx, normalized); err == nil && rec.UserConfirmed {
		return domain.ResolvedCached(mention, rec.IngredientID, rec.Confidence)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Tier 2: case-insensitive exact match against canonical names.
	id, err := r.catalog.ExactLookup(lookupCtx, normalized)
	if err == nil {
		outcome := domain.ResolvedExact(mention, id)
		r.writeThrough(ctx, normalized, outcome)
		return outcome
	}
	if !errors.Is(err, domain.ErrIngredientNotFound) {
		r.log.Warn("exact lookup failed, degrading to none tier",
			zap.String("mention", mention), zap.Error(err))
		return domain.Unresolved(mention)
	}

	// Tier 3: fuzzy similarity against the catalog.
	candidates, err := r.catalog.FuzzyLookup(lookupCtx, normalized, r.medium)
	if err != nil {
		r.log.Warn("fuzzy lookup failed, degrading to none tier",
			zap.String("mention", mention), zap.Error(err))
		return domain.Unresolved(mention)
	}
	best, ok := bestCandidate(candidates)
	if !ok || best.Score <= r.medium {
		// Tier 4: none. Deliberately not cached; catalog growth may
		// resolve this mention later.
		return domain.Unresolved(mention)
	}

	outcome := domain.ResolvedFuzzy(mention, best.ID, best.Score, best.Score <= r.high)
	r.writeThrough(ctx, normalized, outcome)
	return outcome
}

// bestCandidate picks the winner deterministically: highest score first,
// ties broken by lexicographically smaller canonical name.
func bestCandidate(candidates []domain.CatalogCandidate) (domain.CatalogCandidate, bool) {
	if len(candidates) == 0 {
		return domain.CatalogCandidate{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score || (c.Score == best.Score && c.CanonicalName < best.CanonicalName) {
			best = c
		}
	}
	return best, true
}

// writeThrough records an exact or fuzzy outcome in the match store. Derived
// rows are a pure performance cache (never user-confirmed here); a write
// failure only costs a future cache hit, so it is logged and swallowed.
func (r *Resolver) writeThrough(ctx context.Context, normalized string, outcome domain.Resolution) {
	now := time.Now().UTC()
	err := r.matches.Upsert(ctx, domain.MatchRecord{
		NormalizedText: normalized,
		IngredientID:   outcome.IngredientID,
		MatchType:      outcome.MatchType,
		Confidence:     outcome.Confidence,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		r.log.Warn("match cache write-through failed",
			zap.String("normalized", normalized), zap.Error(err))
	}
}
