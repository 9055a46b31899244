package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	ierr "provider-subscription-api/internal/errors"
	"provider-subscription-api/pkg/logging"

	"github.com/redis/go-redis/v9"
)

// Locker serializes admin actions on one provider.
type Locker interface {
	// Acquire takes the lock or fails with ErrConcurrentModification when it is held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// RateLimiter admits at most one call per key per window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisService provides Redis operations
type RedisService struct {
	client *redis.Client
}

// NewRedisService creates a new Redis service instance
func NewRedisService(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

// Acquire implements Locker with SET NX and a random owner token.
func (r *RedisService) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token, err := randomToken()
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not acquire action lock").Mark(ierr.ErrSystem)
	}

	lockKey := fmt.Sprintf("lock:%s", key)
	ok, err := r.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not acquire action lock").Mark(ierr.ErrSystem)
	}
	if !ok {
		return nil, ierr.NewError("action lock held").
			WithHint("Another action on this provider is in progress, please retry").
			WithReportableDetails(map[string]any{"key": key}).
			Mark(ierr.ErrConcurrentModification)
	}

	release := func() {
		// the request context may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{lockKey}, token).Err(); err != nil {
			logging.Warnf("Failed to release lock %s: %v", lockKey, err)
		}
	}
	return release, nil
}

// Allow implements RateLimiter. The first call in a window sets the marker key.
func (r *RedisService) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}

	ok, err := r.client.SetNX(ctx, fmt.Sprintf("rate_limit:%s", key), "1", window).Result()
	if err != nil {
		return false, ierr.WithError(err).WithHint("Could not check rate limit").Mark(ierr.ErrSystem)
	}
	return ok, nil
}

func randomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
