package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "turnosms:session:"

// RedisStore keeps sessions in Redis so multiple instances can serve the
// same phone. Expiry is delegated to the key TTL, which matches the
// sweep-on-read contract: an expired session is simply gone.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed store with the given TTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if rdb == nil {
		panic("session: redis client required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func redisKey(phone string) string {
	return redisKeyPrefix + phone
}

// Get returns the live session for phone, or nil when absent or expired.
func (s *RedisStore) Get(ctx context.Context, phone string) (*Session, error) {
	data, err := s.rdb.Get(ctx, redisKey(phone)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: get: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &sess, nil
}

// Save upserts the session, bumps its activity timestamp, and resets the TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Phone == "" {
		return errors.New("session: phone required")
	}
	sess.LastActivity = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey(sess.Phone), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: set: %w", err)
	}
	return nil
}

// Delete removes the session for phone.
func (s *RedisStore) Delete(ctx context.Context, phone string) error {
	if err := s.rdb.Del(ctx, redisKey(phone)).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// All scans every live session. Diagnostics only; SCAN over the key
// prefix, not suitable for hot paths.
func (s *RedisStore) All(ctx context.Context) ([]Session, error) {
	var sessions []Session
	iter := s.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("session: scan get: %w", err)
		}
		var sess Session
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("session: scan: %w", err)
	}
	return sessions, nil
}
