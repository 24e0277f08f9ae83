// Package redisstore is a Redis-backed credential store, for deployments
// where several client processes share one session (for example a fleet
// of admin workers acting as the same service account).
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talodu/marketplace-client/internal/core/domain"
	"github.com/talodu/marketplace-client/pkg/logger"
)

const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
	fieldUser         = "user"

	opTimeout = 5 * time.Second
)

// Store keeps the session in a single Redis hash under keyPrefix.
type Store struct {
	client *redis.Client
	key    string
}

// NewStore creates a Store wrapping the given Redis client.
func NewStore(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = "talodu:session"
	}
	return &Store{client: client, key: keyPrefix}
}

// Save writes all three session fields in one HSET.
func (s *Store) Save(pair domain.TokenPair, user *domain.User) error {
	if user == nil || pair.AccessToken == "" || pair.RefreshToken == "" {
		return fmt.Errorf("redisstore: refusing to save partial session")
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("redisstore: marshal user: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err = s.client.HSet(ctx, s.key,
		fieldAccessToken, pair.AccessToken,
		fieldRefreshToken, pair.RefreshToken,
		fieldUser, string(userJSON),
	).Err()
	if err != nil {
		return fmt.Errorf("redisstore: save session: %w", err)
	}
	return nil
}

// Load reads the stored session. Missing or partial hashes report absent;
// an undecodable user field clears the hash before reporting absent.
func (s *Store) Load() (domain.TokenPair, *domain.User, bool) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("session hash unreadable")
		return domain.TokenPair{}, nil, false
	}

	access := fields[fieldAccessToken]
	refresh := fields[fieldRefreshToken]
	userJSON := fields[fieldUser]
	if access == "" || refresh == "" || userJSON == "" {
		if len(fields) > 0 {
			log.Warn().Str("key", s.key).Msg("stored session incomplete, clearing")
			_ = s.Clear()
		}
		return domain.TokenPair{}, nil, false
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		corrupted := fmt.Errorf("%w: %v", domain.ErrStorageCorrupted, err)
		log.Warn().Err(corrupted).Str("key", s.key).Msg("clearing session hash")
		_ = s.Clear()
		return domain.TokenPair{}, nil, false
	}

	pair := domain.TokenPair{AccessToken: access, RefreshToken: refresh}
	return pair, &user, true
}

// Clear deletes the session hash.
func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redisstore: clear session: %w", err)
	}
	return nil
}
