// Package lock provides a Redis-backed mutual exclusion primitive keyed by
// an arbitrary string.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// ErrNotAcquired is returned when the lock is held by someone else and the
// retry budget is exhausted.
var ErrNotAcquired = errors.New("lock: not acquired")

// UnlockFunc releases a held lock. It is safe to call once.
type UnlockFunc func(ctx context.Context) error

// Locker serializes work on a per-key basis across processes.
type Locker interface {
	// Acquire takes the lock for key, retrying with backoff until the
	// context expires or the retry budget runs out.
	Acquire(ctx context.Context, key string) (UnlockFunc, error)
}

// compare-and-delete so a lock that expired mid-flight cannot release a
// successor's lock
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements Locker using SET NX with a per-acquire token.
type RedisLock struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	backoff time.Duration
	retries uint64
}

// Option configures a RedisLock.
type Option func(*RedisLock)

// WithTTL sets how long an acquired lock lives before Redis expires it.
func WithTTL(ttl time.Duration) Option {
	return func(l *RedisLock) { l.ttl = ttl }
}

// WithBackoff sets the initial retry backoff for contended acquires.
func WithBackoff(d time.Duration) Option {
	return func(l *RedisLock) { l.backoff = d }
}

// WithMaxRetries caps the number of acquire attempts.
func WithMaxRetries(n uint64) Option {
	return func(l *RedisLock) { l.retries = n }
}

// NewRedisLock constructs a RedisLock with sane defaults for short critical
// sections (5s TTL, 8 attempts with jittered exponential backoff).
func NewRedisLock(client *redis.Client, opts ...Option) *RedisLock {
	l := &RedisLock{
		client:  client,
		prefix:  "lock:",
		ttl:     5 * time.Second,
		backoff: 25 * time.Millisecond,
		retries: 8,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire takes the lock for key.
func (l *RedisLock) Acquire(ctx context.Context, key string) (UnlockFunc, error) {
	fk := l.prefix + key
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	b := retry.WithMaxRetries(l.retries, retry.NewExponential(l.backoff))
	b = retry.WithJitterPercent(20, b)

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := l.client.SetNX(ctx, fk, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(ErrNotAcquired)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		return releaseScript.Run(ctx, l.client, []string{fk}, token).Err()
	}, nil
}

func newToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
