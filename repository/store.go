package repository

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/pongarena/pongarena-backend/game"
)

const queueKey = "matchmaking_queue"

const (
    connectAttempts = 5
    connectDelay    = 2 * time.Second
    inviteTTL       = 5 * time.Minute
)

func sessionKey(id string) string { return "pong:session:" + id }
func inviteKey(username string) string { return "pong:invite:" + username }

// Store is the shared state store: the matchmaking queue, every active
// session's serialized state, pending invites, and the per-session locks.
// Any handler instance, in any process, observes the same state through it.
type Store struct {
    rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
    return &Store{rdb: rdb}
}

// WaitReady pings the store with a bounded retry. Exhausting the retries is
// surfaced to the connecting client, never escalated as a process error.
func (s *Store) WaitReady(ctx context.Context) error {
    var last error
    for attempt := 1; attempt <= connectAttempts; attempt++ {
        if err := s.rdb.Ping(ctx).Err(); err == nil {
            return nil
        } else {
            last = err
            log.Printf("State store unreachable (attempt %d/%d): %v", attempt, connectAttempts, err)
        }
        if attempt == connectAttempts {
            break
        }
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(connectDelay):
        }
    }
    return fmt.Errorf("state store unavailable: %w", last)
}

// QueueContains reports whether identity is already waiting in the queue.
func (s *Store) QueueContains(ctx context.Context, identity string) (bool, error) {
    entries, err := s.rdb.LRange(ctx, queueKey, 0, -1).Result()
    if err != nil {
        return false, err
    }
    for _, entry := range entries {
        if entry == identity {
            return true, nil
        }
    }
    return false, nil
}

func (s *Store) PushQueue(ctx context.Context, identity string) error {
    return s.rdb.RPush(ctx, queueKey, identity).Err()
}

func (s *Store) QueueLen(ctx context.Context) (int64, error) {
    return s.rdb.LLen(ctx, queueKey).Result()
}

// PopPair atomically pops the two oldest queue entries. A single LPOP with a
// count keeps a concurrent pop from ever observing one entry gone and the
// other still queued. If only one entry was there it is pushed back to the
// head and no pair is returned.
func (s *Store) PopPair(ctx context.Context) (string, string, bool, error) {
    entries, err := s.rdb.LPopCount(ctx, queueKey, 2).Result()
    if errors.Is(err, redis.Nil) {
        return "", "", false, nil
    }
    if err != nil {
        return "", "", false, err
    }
    if len(entries) < 2 {
        if len(entries) == 1 {
            if err := s.rdb.LPush(ctx, queueKey, entries[0]).Err(); err != nil {
                return "", "", false, err
            }
        }
        return "", "", false, nil
    }
    return entries[0], entries[1], true, nil
}

// RemoveFromQueue removes at most one occurrence of identity.
func (s *Store) RemoveFromQueue(ctx context.Context, identity string) error {
    return s.rdb.LRem(ctx, queueKey, 1, identity).Err()
}

func (s *Store) LoadSession(ctx context.Context, id string) (*game.Session, error) {
    data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
    if errors.Is(err, redis.Nil) {
        return nil, game.ErrSessionNotFound
    }
    if err != nil {
        return nil, err
    }
    session := &game.Session{}
    if err := json.Unmarshal(data, session); err != nil {
        return nil, fmt.Errorf("corrupt session state for %s: %w", id, err)
    }
    return session, nil
}

func (s *Store) SaveSession(ctx context.Context, id string, session *game.Session) error {
    data, err := json.Marshal(session)
    if err != nil {
        return err
    }
    return s.rdb.Set(ctx, sessionKey(id), data, 0).Err()
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
    return s.rdb.Del(ctx, sessionKey(id)).Err()
}

// SetPendingInvite stores inviter keyed by the invitee's name. The TTL makes
// expired invites inert without any sweeper.
func (s *Store) SetPendingInvite(ctx context.Context, invitee, inviter string) error {
    return s.rdb.Set(ctx, inviteKey(invitee), inviter, inviteTTL).Err()
}

// TakePendingInvite claims and removes the pending invite for invitee, if any.
func (s *Store) TakePendingInvite(ctx context.Context, invitee string) (string, bool, error) {
    inviter, err := s.rdb.GetDel(ctx, inviteKey(invitee)).Result()
    if errors.Is(err, redis.Nil) {
        return "", false, nil
    }
    if err != nil {
        return "", false, err
    }
    return inviter, true, nil
}
