// catalogctl runs the offline catalog-build pipeline: it reads a batch of
// scraped ingredient records, deduplicates and categorizes them, and writes
// an immutable versioned snapshot for the catalog loader.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pantrybase/ingredients/internal/domain"
	"github.com/pantrybase/ingredients/internal/logging"
	"github.com/pantrybase/ingredients/internal/pipeline"
	"github.com/pantrybase/ingredients/internal/usecase"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Offline ingredient catalog tooling",
		SilenceUsage: true,
	}
	root.AddCommand(newBuildCommand())
	return root
}

func newBuildCommand() *cobra.Command {
	var (
		inputPath string
		outDir    string
		threshold float64
		logLevel  string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a versioned catalog snapshot from scraped records",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logLevel, "development")
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			records, err := readRecords(inputPath)
			if err != nil {
				return err
			}

			result := pipeline.Run(records, threshold, log)

			outPath := filepath.Join(outDir, result.Version+".csv")
			if err := writeSnapshot(outPath, result.Records); err != nil {
				return err
			}

			log.Info("snapshot written",
				zap.String("path", outPath),
				zap.Int("records", len(result.Records)),
				zap.Int("skipped", result.Summary.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "scraped records JSON file (required)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory for the snapshot file")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", usecase.DefaultDedupThreshold, "similarity threshold for fuzzy clustering")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.MarkFlagRequired("input") //nolint:errcheck
	return cmd
}

func readRecords(path string) ([]domain.ScrapedRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var records []domain.ScrapedRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode scraped records: %w", err)
	}
	return records, nil
}

// writeSnapshot writes to a temp file first and renames into place, so a
// failed run never leaves a partial snapshot behind.
func writeSnapshot(path string, records []domain.ScrapedRecord) error {
	rows := make([]pipeline.SnapshotRow, len(records))
	for i, rec := range records {
		rows[i] = pipeline.RowFromRecord(rec)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := pipeline.WriteSnapshot(tmp, rows); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize snapshot: %w", err)
	}
	return nil
}
