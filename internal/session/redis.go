package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/go-contact-backend/internal/domain"
)

// keyPrefix namespaces session keys in Redis.
const keyPrefix = "contact:session:"

// RedisStore is a Store backed by Redis, for deployments where several
// instances must share session state. Expiry is delegated to the native key
// TTL, so the capability window is enforced by Redis itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the Redis instance at url (redis:// form) and returns
// a RedisStore whose keys live for ttl. The connection is verified with a
// ping before the store is returned.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Put stores the session as a JSON value keyed by rec.ID, resetting its TTL.
func (s *RedisStore) Put(ctx context.Context, rec domain.ContactRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.client.Set(ctx, keyPrefix+rec.ID, b, s.ttl).Err()
}

// Get returns the live session for id, or ErrNotFound once the key expired
// or never existed.
func (s *RedisStore) Get(ctx context.Context, id string) (domain.ContactRecord, error) {
	b, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err == redis.Nil {
		return domain.ContactRecord{}, ErrNotFound
	}
	if err != nil {
		return domain.ContactRecord{}, fmt.Errorf("fetch session: %w", err)
	}
	var rec domain.ContactRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.ContactRecord{}, fmt.Errorf("decode session: %w", err)
	}
	return rec, nil
}

// Delete removes the session for id, or returns ErrNotFound when the key is
// already gone.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, keyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
