package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pantrybase/ingredients/internal/domain"
)

const matchKeyPrefix = "match:"

// upsertRetries bounds optimistic-lock retries when concurrent writers race
// on the same key.
const upsertRetries = 5

// RedisStore is a Redis-backed match store. Auto-derived rows carry a TTL so
// the cache tracks catalog churn; user-confirmed rows are written without
// expiry because a human correction must stick permanently.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at the given URL
// (redis://[user:pass@]host:port/db) and verifies the connection.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// GetByNormalizedText returns the live record for the text.
func (s *RedisStore) GetByNormalizedText(ctx context.Context, normalizedText string) (*domain.MatchRecord, error) {
	raw, err := s.client.Get(ctx, matchKeyPrefix+normalizedText).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec domain.MatchRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode match record: %w", err)
	}
	return &rec, nil
}

// Upsert writes the record under its normalized text. Confirmed rows are
// never clobbered by derived ones. The read-decide-write cycle runs under
// WATCH so a Confirm landing between the read and the Set aborts this write
// instead of being silently overwritten; aborted attempts retry against the
// fresh value.
func (s *RedisStore) Upsert(ctx context.Context, record domain.MatchRecord) error {
	key := matchKeyPrefix + record.NormalizedText

	txn := func(tx *redis.Tx) error {
		var existing *domain.MatchRecord
		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get: %w", err)
		}
		if err == nil {
			var rec domain.MatchRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode match record: %w", err)
			}
			existing = &rec
		}

		next, write := mergeForUpsert(existing, record)
		if !write {
			return nil
		}
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode match record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttlFor(next))
			return nil
		})
		return err
	}

	for i := 0; i < upsertRetries; i++ {
		err := s.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis upsert: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis upsert %q: %w", record.NormalizedText, redis.TxFailedErr)
}

// mergeForUpsert decides what an upsert may write over the current value.
// The original CreatedAt survives updates, and a confirmed row is only
// replaced by another confirmation.
func mergeForUpsert(existing *domain.MatchRecord, incoming domain.MatchRecord) (domain.MatchRecord, bool) {
	if existing == nil {
		return incoming, true
	}
	if existing.UserConfirmed && !incoming.UserConfirmed {
		return domain.MatchRecord{}, false
	}
	incoming.CreatedAt = existing.CreatedAt
	return incoming, true
}

// Confirm marks the record for the text as user-confirmed with full
// confidence, creating it if absent.
func (s *RedisStore) Confirm(ctx context.Context, normalizedText, ingredientID string) error {
	now := time.Now().UTC()
	rec, err := s.GetByNormalizedText(ctx, normalizedText)
	if errors.Is(err, domain.ErrCacheMiss) {
		rec = &domain.MatchRecord{
			NormalizedText: normalizedText,
			CreatedAt:      now,
		}
	} else if err != nil {
		return err
	}

	rec.IngredientID = ingredientID
	rec.MatchType = domain.MatchCached
	rec.Confidence = 1.0
	rec.UserConfirmed = true
	rec.UpdatedAt = now
	return s.write(ctx, *rec)
}

func (s *RedisStore) write(ctx context.Context, record domain.MatchRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode match record: %w", err)
	}
	if err := s.client.Set(ctx, matchKeyPrefix+record.NormalizedText, raw, s.ttlFor(record)).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// ttlFor returns the expiry for a record: derived rows get the configured
// TTL, confirmed rows persist without expiry.
func (s *RedisStore) ttlFor(record domain.MatchRecord) time.Duration {
	if record.UserConfirmed {
		return 0
	}
	return s.ttl
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
