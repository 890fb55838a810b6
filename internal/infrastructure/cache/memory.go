package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pantrybase/ingredients/internal/domain"
)

// MemoryStore is a thread-safe in-memory match store. The default for
// development and tests; production deployments point at Redis or Postgres.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]domain.MatchRecord
}

// NewMemoryStore creates an empty in-memory match store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]domain.MatchRecord)}
}

// GetByNormalizedText returns the live record for the text.
func (s *MemoryStore) GetByNormalizedText(ctx context.Context, normalizedText string) (*domain.MatchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[normalizedText]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return &rec, nil
}

// Upsert inserts or updates the record keyed by its normalized text. The
// original CreatedAt survives updates; last writer wins on everything else,
// which is benign because identical keys imply identical derived rows.
func (s *MemoryStore) Upsert(ctx context.Context, record domain.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[record.NormalizedText]; ok {
		record.CreatedAt = existing.CreatedAt
		// A confirmed row is only replaced by another confirmation.
		if existing.UserConfirmed && !record.UserConfirmed {
			return nil
		}
	}
	s.data[record.NormalizedText] = record
	return nil
}

// Confirm marks the record for the text as user-confirmed with full
// confidence, creating it if absent.
func (s *MemoryStore) Confirm(ctx context.Context, normalizedText, ingredientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	rec, ok := s.data[normalizedText]
	if !ok {
		rec = domain.MatchRecord{
			NormalizedText: normalizedText,
			CreatedAt:      now,
		}
	}
	rec.IngredientID = ingredientID
	rec.MatchType = domain.MatchCached
	rec.Confidence = 1.0
	rec.UserConfirmed = true
	rec.UpdatedAt = now
	s.data[normalizedText] = rec
	return nil
}

// Len returns the number of live records (for tests and monitoring).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
