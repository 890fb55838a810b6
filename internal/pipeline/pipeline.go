// Package pipeline orchestrates the offline catalog build: scraped records
// are merged by exact normalized name, fuzzy-deduplicated, categorized, and
// written out as an immutable versioned snapshot. The run is a single
// sequential batch over one input; it either fully succeeds or the caller
// discards the output, so there is no partial-write state.
package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pantrybase/ingredients/internal/domain"
	"github.com/pantrybase/ingredients/internal/usecase"
)

// Result is the output of one catalog build run.
type Result struct {
	Version string                 `json:"version"`
	Records []domain.ScrapedRecord `json:"records"`
	Summary usecase.DedupSummary   `json:"summary"`
}

// Run executes the offline catalog build over an immutable input batch.
// A non-positive threshold falls back to usecase.DefaultDedupThreshold.
func Run(records []domain.ScrapedRecord, threshold float64, log *zap.Logger) Result {
	if log == nil {
		log = zap.NewNop()
	}

	dedup := usecase.NewDeduplicator(threshold, log)
	merged, summary := dedup.Deduplicate(records)
	categorized := usecase.Categorize(merged)

	version := newVersion()
	log.Info("catalog build complete",
		zap.String("version", version),
		zap.Int("input", summary.Input),
		zap.Int("output", summary.Output),
		zap.Int("skipped", summary.Skipped))

	return Result{
		Version: version,
		Records: categorized,
		Summary: summary,
	}
}

// newVersion returns a snapshot version id: build timestamp plus a short
// random suffix so two builds in the same second never collide.
func newVersion() string {
	return fmt.Sprintf("catalog-%s-%s",
		time.Now().UTC().Format("20060102T150405Z"),
		uuid.NewString()[:8])
}
