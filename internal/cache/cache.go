// Package cache holds the short-lived Redis state used by request handlers:
// OAuth2 state values, webhook idempotency keys and sync cooldowns.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound is returned for unknown, expired or already used OAuth states.
var ErrStateNotFound = errors.New("oauth state not found")

const (
	oauthStatePrefix = "ducksnap:oauth_state:"
	eventPrefix      = "ducksnap:paypal_event:"
	cooldownPrefix   = "ducksnap:sync_cooldown:"
)

// Connect parses a redis:// URL and verifies the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

type Store struct {
	rdb redis.UniversalClient
}

func New(rdb redis.UniversalClient) *Store {
	return &Store{rdb: rdb}
}

// SaveOAuthState remembers which user started an authorization flow.
func (s *Store) SaveOAuthState(ctx context.Context, state string, userID int64, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, oauthStatePrefix+state, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

// ConsumeOAuthState returns the user bound to state and deletes it.
func (s *Store) ConsumeOAuthState(ctx context.Context, state string) (int64, error) {
	raw, err := s.rdb.GetDel(ctx, oauthStatePrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrStateNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("consume oauth state: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode oauth state: %w", err)
	}
	return userID, nil
}

// MarkEventProcessed records a webhook event id. It reports false when the
// id was already recorded within ttl.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, eventPrefix+eventID, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark event processed: %w", err)
	}
	return ok, nil
}

// ForgetEvent removes an event id so a redelivery is processed again.
func (s *Store) ForgetEvent(ctx context.Context, eventID string) error {
	return s.rdb.Del(ctx, eventPrefix+eventID).Err()
}

// AcquireSyncCooldown starts a cooldown window for a user's manual sync.
// When a window is already running it returns false and the time left.
func (s *Store) AcquireSyncCooldown(ctx context.Context, userID int64, window time.Duration) (bool, time.Duration, error) {
	key := cooldownPrefix + strconv.FormatInt(userID, 10)
	ok, err := s.rdb.SetNX(ctx, key, time.Now().Unix(), window).Result()
	if err != nil {
		return false, 0, fmt.Errorf("acquire sync cooldown: %w", err)
	}
	if ok {
		return true, 0, nil
	}
	left, err := s.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("read sync cooldown: %w", err)
	}
	if left < 0 {
		left = 0
	}
	return false, left, nil
}

// ReleaseSyncCooldown ends a cooldown early.
func (s *Store) ReleaseSyncCooldown(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, cooldownPrefix+strconv.FormatInt(userID, 10)).Err()
}
