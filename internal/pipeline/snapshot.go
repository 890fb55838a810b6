package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pantrybase/ingredients/internal/domain"
)

// snapshotHeader is the fixed column order of a catalog snapshot. The format
// must round-trip exactly: ReadSnapshot(WriteSnapshot(rows)) == rows.
var snapshotHeader = []string{
	"canonical_name", "aliases", "category", "flavor_profile",
	"default_unit", "is_canonical", "pending_review", "image_url", "embedding",
}

// listSep joins list fields inside a single CSV cell. Ingredient names never
// contain it; ReadSnapshot rejects values that do, rather than corrupt data.
const listSep = "|"

// SnapshotRow is one line of a versioned catalog snapshot. Embedding is an
// opaque value owned by the external embedding service; this pipeline only
// carries it through (empty for fresh builds).
type SnapshotRow struct {
	CanonicalName string
	Aliases       []string
	Category      string
	FlavorProfile []string
	DefaultUnit   string
	IsCanonical   bool
	PendingReview bool
	ImageURL      string
	Embedding     string
}

// RowFromRecord converts a merged scraped record into its snapshot row.
func RowFromRecord(rec domain.ScrapedRecord) SnapshotRow {
	return SnapshotRow{
		CanonicalName: rec.CanonicalName,
		Aliases:       rec.Aliases,
		Category:      rec.Category,
		FlavorProfile: rec.FlavorProfile,
		DefaultUnit:   rec.DefaultUnit,
		IsCanonical:   rec.IsCanonical,
		PendingReview: rec.PendingReview,
		ImageURL:      rec.ImageURL,
	}
}

// WriteSnapshot writes rows as CSV with a header line.
func WriteSnapshot(w io.Writer, rows []SnapshotRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}
	for i, row := range rows {
		aliases, err := joinList(row.Aliases)
		if err != nil {
			return fmt.Errorf("row %d aliases: %w", i, err)
		}
		flavors, err := joinList(row.FlavorProfile)
		if err != nil {
			return fmt.Errorf("row %d flavor profile: %w", i, err)
		}
		record := []string{
			row.CanonicalName,
			aliases,
			row.Category,
			flavors,
			row.DefaultUnit,
			strconv.FormatBool(row.IsCanonical),
			strconv.FormatBool(row.PendingReview),
			row.ImageURL,
			row.Embedding,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write snapshot row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSnapshot parses a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) ([]SnapshotRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(snapshotHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read snapshot header: %w", err)
	}
	for i, col := range snapshotHeader {
		if header[i] != col {
			return nil, fmt.Errorf("snapshot header mismatch: column %d is %q, want %q", i, header[i], col)
		}
	}

	var rows []SnapshotRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot line %d: %w", line, err)
		}
		isCanonical, err := strconv.ParseBool(record[5])
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: bad is_canonical: %w", line, err)
		}
		pendingReview, err := strconv.ParseBool(record[6])
		if err != nil {
			return nil, fmt.Errorf("snapshot line %d: bad pending_review: %w", line, err)
		}
		rows = append(rows, SnapshotRow{
			CanonicalName: record[0],
			Aliases:       splitList(record[1]),
			Category:      record[2],
			FlavorProfile: splitList(record[3]),
			DefaultUnit:   record[4],
			IsCanonical:   isCanonical,
			PendingReview: pendingReview,
			ImageURL:      record[7],
			Embedding:     record[8],
		})
	}
	return rows, nil
}

func joinList(values []string) (string, error) {
	for _, v := range values {
		if strings.Contains(v, listSep) {
			return "", fmt.Errorf("value %q contains list separator %q", v, listSep)
		}
	}
	return strings.Join(values, listSep), nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}
