package usecase

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pantrybase/ingredients/internal/domain"
)

// DefaultDedupThreshold is the similarity score at or above which two
// exact-merged records are considered the same real ingredient.
const DefaultDedupThreshold = 0.90

// DedupSummary reports what one deduplication run did. Skipped counts
// malformed records (no canonical name) that were dropped rather than merged.
type DedupSummary struct {
	Input   int `json:"input"`
	Output  int `json:"output"`
	Skipped int `json:"skipped"`
	Merged  int `json:"merged"`
}

// Deduplicator collapses a batch of scraped ingredient records into one
// canonical record per real ingredient. Pure: it never touches storage, and
// identical input plus threshold produces byte-identical output.
type Deduplicator struct {
	threshold float64
	log       *zap.Logger
}

// NewDeduplicator creates a deduplicator. A non-positive threshold falls back
// to DefaultDedupThreshold.
func NewDeduplicator(threshold float64, log *zap.Logger) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Deduplicator{threshold: threshold, log: log}
}

// Deduplicate merges records naming the same real ingredient. Two phases:
//
//  1. Exact grouping: records bucketed by normalized canonical name are
//     merged field-wise (alias/flavor union, first-non-nil scalars, AND of
//     pending review, comma-joined distinct sources).
//  2. Greedy fuzzy clustering: the exact-merged set is sorted by canonical
//     name length ascending (shorter names are more likely canonical, ties
//     keep input order) and walked once. Each unconsumed record becomes an
//     anchor and absorbs every later unconsumed record scoring at or above
//     the threshold. Single-pass and anchor-based, not transitive closure:
//     a record similar to two anchors merges into whichever anchor comes
//     first in sort order.
//
// Phase 2 is O(n²) comparisons, fine for tens of thousands of records but a
// ceiling well before millions.
func (d *Deduplicator) Deduplicate(records []domain.ScrapedRecord) ([]domain.ScrapedRecord, DedupSummary) {
	summary := DedupSummary{Input: len(records)}
	if len(records) == 0 {
		return []domain.ScrapedRecord{}, summary
	}

	// Phase 1: exact grouping by normalized canonical name.
	groups := make(map[string]*domain.ScrapedRecord)
	order := make([]string, 0, len(records))
	for _, rec := range records {
		key := Normalize(rec.CanonicalName)
		if key == "" {
			summary.Skipped++
			d.log.Debug("skipping malformed scraped record",
				zap.String("source", rec.Source), zap.String("sourceId", rec.SourceID))
			continue
		}
		if existing, ok := groups[key]; ok {
			merged := mergeRecords(*existing, rec)
			groups[key] = &merged
			summary.Merged++
			continue
		}
		rec := rec
		rec.CanonicalName = key
		groups[key] = &rec
		order = append(order, key)
	}

	merged := make([]domain.ScrapedRecord, 0, len(order))
	for _, key := range order {
		merged = append(merged, *groups[key])
	}

	// Phase 2: greedy anchor-based clustering over the exact-merged set.
	// Threshold 1.0 degenerates to exact-grouping-only since Similarity
	// returns 1.0 only for identical keys, which phase 1 already merged.
	sort.SliceStable(merged, func(i, j int) bool {
		return len(merged[i].CanonicalName) < len(merged[j].CanonicalName)
	})

	consumed := make([]bool, len(merged))
	out := make([]domain.ScrapedRecord, 0, len(merged))
	for i := range merged {
		if consumed[i] {
			continue
		}
		anchor := merged[i]
		for j := i + 1; j < len(merged); j++ {
			if consumed[j] {
				continue
			}
			if Similarity(anchor.CanonicalName, merged[j].CanonicalName) >= d.threshold {
				absorbed := merged[j]
				name := pickCanonicalName(anchor, absorbed)
				anchor = mergeRecords(anchor, absorbed)
				if name != anchor.CanonicalName {
					anchor.Aliases = appendDistinct(anchor.Aliases, anchor.CanonicalName)
					anchor.CanonicalName = name
				}
				anchor.Aliases = removeName(anchor.Aliases, name)
				consumed[j] = true
				summary.Merged++
			}
		}
		out = append(out, anchor)
	}

	summary.Output = len(out)
	d.log.Info("deduplication run complete",
		zap.Int("input", summary.Input),
		zap.Int("output", summary.Output),
		zap.Int("skipped", summary.Skipped),
		zap.Int("merged", summary.Merged))
	return out, summary
}

// pickCanonicalName chooses the representative name when an anchor absorbs a
// similar record. Seeded canonical records win outright. A name that contains
// the other as a whole phrase keeps the shorter form ("tomato" over "tomato
// paste" would never merge at sane thresholds, but aliases can). Otherwise
// the longer spelling wins: near-identical names differ because of typos, and
// typos usually drop letters ("chiken" absorbed by "chicken"). Equal lengths
// keep the anchor's name, which preserves input order.
func pickCanonicalName(anchor, absorbed domain.ScrapedRecord) string {
	a, b := anchor.CanonicalName, absorbed.CanonicalName
	switch {
	case anchor.IsCanonical && !absorbed.IsCanonical:
		return a
	case absorbed.IsCanonical && !anchor.IsCanonical:
		return b
	case strings.Contains(b, a):
		return a
	case strings.Contains(a, b):
		return b
	case len(b) > len(a):
		return b
	default:
		return a
	}
}

// removeName drops the cluster's own canonical name from its alias set.
func removeName(aliases []string, name string) []string {
	out := aliases[:0]
	for _, a := range aliases {
		if a != name {
			out = append(out, a)
		}
	}
	return out
}

// mergeRecords folds b into a. Associative in observable effect for the
// merged fields: alias and flavor unions, first-non-empty scalars in input
// order, pending review only cleared when every contributor agrees, sources
// comma-joined distinct.
func mergeRecords(a, b domain.ScrapedRecord) domain.ScrapedRecord {
	out := a
	out.Aliases = appendDistinct(a.Aliases, b.Aliases...)
	if b.CanonicalName != a.CanonicalName {
		out.Aliases = appendDistinct(out.Aliases, b.CanonicalName)
	}
	out.FlavorProfile = appendDistinct(a.FlavorProfile, b.FlavorProfile...)
	if out.Category == "" {
		out.Category = b.Category
	}
	if out.Description == "" {
		out.Description = b.Description
	}
	if out.DefaultUnit == "" {
		out.DefaultUnit = b.DefaultUnit
	}
	if out.ImageURL == "" {
		out.ImageURL = b.ImageURL
	}
	out.IsCanonical = a.IsCanonical || b.IsCanonical
	out.PendingReview = a.PendingReview && b.PendingReview
	out.Source = joinSources(a.Source, b.Source)
	return out
}

// appendDistinct appends values not already present, excluding the empty
// string, preserving first-seen order.
func appendDistinct(existing []string, values ...string) []string {
	seen := make(map[string]struct{}, len(existing)+len(values))
	out := make([]string, 0, len(existing)+len(values))
	for _, v := range existing {
		if _, ok := seen[v]; !ok && v != "" {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range values {
		if _, ok := seen[v]; !ok && v != "" {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// joinSources comma-joins distinct source labels in sorted order so that
// merge order never leaks into the provenance field.
func joinSources(a, b string) string {
	labels := appendDistinct(strings.Split(a, ","), strings.Split(b, ",")...)
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
