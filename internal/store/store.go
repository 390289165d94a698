// Package store is the relational persistence layer: raw SQL over
// database/sql with the pgx driver, plus a Redis cache in front of the
// hottest lookups (companies by id, email templates by name).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/meta-portal/meta-service/internal/crypto"
)

// RedisClient is the slice of go-redis used by the cache. A nil client
// disables caching entirely.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetEx(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

const cacheTTL = 1 * time.Hour

// Store bundles the database handle, the cache and the PII cipher.
type Store struct {
	db     *sql.DB
	cache  RedisClient
	cipher *crypto.Cipher
}

// New opens the database and pings it. cache and cipher may be nil; without a
// cipher, company contact emails are not persisted.
func New(dsn string, cache RedisClient, cipher *crypto.Cipher) (*Store, error) {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*config)
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Store{db: db, cache: cache, cipher: cipher}, nil
}

// Close closes the database and cache connections.
func (s *Store) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return s.db.Close()
}

func (s *Store) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(cached), dst) == nil
}

func (s *Store) cacheSet(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err == nil {
		s.cache.SetEx(ctx, key, data, cacheTTL)
	}
}

func (s *Store) cacheDel(ctx context.Context, keys ...string) {
	if s.cache != nil {
		s.cache.Del(ctx, keys...)
	}
}

// jsonb marshals v for a JSONB column, writing NULL for empty values.
func jsonb(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// scanJSONB unmarshals a nullable JSONB column into dst.
func scanJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
