// Package session keeps the signed-in user record in Redis and revokes tokens on sign-out.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/models"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// Store persists one session record per user under a canonical key. Records
// written under a legacy key are migrated on first read.
type Store struct {
	rdb    *redis.Client
	key    string
	legacy []string
	ttl    time.Duration
}

// NewStore returns a Store. A nil client makes every operation a no-op.
func NewStore(rdb *redis.Client, key string, legacy []string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, key: key, legacy: legacy, ttl: ttl}
}

// Enabled reports whether a Redis client backs the store.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

func recordKey(key string, userID uint) string {
	return "session:" + key + ":" + strconv.FormatUint(uint64(userID), 10)
}

// Save writes user as the only session value for its id.
func (s *Store) Save(ctx context.Context, user *models.User) error {
	if !s.Enabled() {
		return nil
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.rdb.Set(ctx, recordKey(s.key, user.ID), data, s.ttl).Err()
}

// Load returns the session record for userID, or nil when there is none.
func (s *Store) Load(ctx context.Context, userID uint) (*models.User, error) {
	if !s.Enabled() {
		return nil, nil
	}
	user, err := s.read(ctx, recordKey(s.key, userID))
	if err != nil || user != nil {
		return user, err
	}

	for _, legacy := range s.legacy {
		key := recordKey(legacy, userID)
		user, err := s.read(ctx, key)
		if err != nil {
			return nil, err
		}
		if user == nil {
			continue
		}
		if err := s.Save(ctx, user); err != nil {
			return nil, err
		}
		if err := s.rdb.Del(ctx, key).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete legacy session", "key", key, "error", err.Error())
		}
		middleware.Logger.InfoContext(ctx, "migrated legacy session", "from", legacy, "user_id", userID)
		return user, nil
	}
	return nil, nil
}

func (s *Store) read(ctx context.Context, key string) (*models.User, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		middleware.Logger.WarnContext(ctx, "discarding corrupt session", "key", key, "error", err.Error())
		_ = s.rdb.Del(ctx, key).Err()
		return nil, nil
	}
	return &user, nil
}

// Delete removes the session record under every known key.
func (s *Store) Delete(ctx context.Context, userID uint) error {
	if !s.Enabled() {
		return nil
	}
	keys := []string{recordKey(s.key, userID)}
	for _, legacy := range s.legacy {
		keys = append(keys, recordKey(legacy, userID))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Revoke blacklists a token id until it would have expired anyway.
func (s *Store) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if !s.Enabled() || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// Revoked reports whether jti was blacklisted.
func (s *Store) Revoked(ctx context.Context, jti string) (bool, error) {
	if !s.Enabled() || jti == "" {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
