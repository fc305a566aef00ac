package repository

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"
)

const (
    lockAcquireTimeout = 5 * time.Second
    lockRetryDelay     = 50 * time.Millisecond
    lockTTL            = 5 * time.Second
)

var ErrLockTimeout = errors.New("session lock acquire timed out")

// Only the holder's token may delete the lock key, so an expired-and-retaken
// lock is never released by the previous holder.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

func lockKey(id string) string { return "pong:lock:" + id }

// WithSessionLock runs fn while holding the session's distributed lock.
// Acquisition waits at most lockAcquireTimeout; the TTL covers a holder that
// dies mid-section.
func (s *Store) WithSessionLock(ctx context.Context, id string, fn func() error) error {
    key := lockKey(id)
    token := uuid.New().String()
    deadline := time.Now().Add(lockAcquireTimeout)

    for {
        acquired, err := s.rdb.SetNX(ctx, key, token, lockTTL).Result()
        if err != nil {
            return err
        }
        if acquired {
            break
        }
        if time.Now().After(deadline) {
            return ErrLockTimeout
        }
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(lockRetryDelay):
        }
    }

    defer func() {
        // Release with a fresh context so a canceled caller still unlocks.
        if err := releaseScript.Run(context.Background(), s.rdb, []string{key}, token).Err(); err != nil {
            log.Printf("Failed to release lock %s: %v", key, err)
        }
    }()

    return fn()
}
