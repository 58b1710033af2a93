package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisLockAcquireRelease(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	l := NewRedisLock(client)

	unlock, err := l.Acquire(ctx, "otp:alice@example.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:otp:alice@example.com"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("lock:otp:alice@example.com"))
}

func TestRedisLockContention(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	l := NewRedisLock(client, WithBackoff(time.Millisecond), WithMaxRetries(2))

	unlock, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	defer unlock(ctx)

	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrNotAcquired)
}

func TestRedisLockReacquireAfterRelease(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	l := NewRedisLock(client, WithBackoff(time.Millisecond), WithMaxRetries(2))

	unlock, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))

	unlock2, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}

// A stale unlock must not release a lock someone else now holds.
func TestRedisLockStaleUnlockIsNoop(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	l := NewRedisLock(client, WithTTL(50*time.Millisecond), WithBackoff(time.Millisecond), WithMaxRetries(2))

	unlock, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	// Simulate the TTL firing and another process taking the lock.
	mr.FastForward(100 * time.Millisecond)
	unlock2, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("lock:k"), "successor's lock must survive a stale release")

	require.NoError(t, unlock2(ctx))
	assert.False(t, mr.Exists("lock:k"))
}

func TestRedisLockUnlockIdempotent(t *testing.T) {
	ctx := context.Background()
	_, client := newTestClient(t)
	l := NewRedisLock(client)

	unlock, err := l.Acquire(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, unlock(ctx))
	require.NoError(t, unlock(ctx))
}
