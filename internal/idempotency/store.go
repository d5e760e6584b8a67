// Package idempotency remembers which reservation a client's
// Idempotency-Key produced, so a retried booking request replays the
// original result instead of creating a second reservation.
package idempotency

import (
    "context"
    "errors"
    "fmt"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// pendingTTL bounds how long an unfinished request keeps its key locked.
const pendingTTL = 30 * time.Second

const pending = "pending"

// ErrInProgress is returned by Begin while another request with the same
// key has not completed yet.
var ErrInProgress = errors.New("request with this idempotency key is in progress")

// Store keeps key state in Redis under prefix:user:key.  Values are either
// the pending marker or the decimal reservation ID.
type Store struct {
    rdb    *redis.Client
    ttl    time.Duration
    prefix string
}

// NewStore returns a Store remembering completed keys for ttl.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
    if ttl <= 0 {
        ttl = 24 * time.Hour
    }
    return &Store{rdb: rdb, ttl: ttl, prefix: "idem"}
}

func (s *Store) key(userID uint64, key string) string {
    return fmt.Sprintf("%s:%d:%s", s.prefix, userID, key)
}

// Begin claims key for userID.  When the key already completed it returns
// the stored reservation ID with replay set.  A claimed but unfinished key
// yields ErrInProgress.
func (s *Store) Begin(ctx context.Context, userID uint64, key string) (reservationID uint64, replay bool, err error) {
    k := s.key(userID, key)
    for range 2 {
        ok, err := s.rdb.SetNX(ctx, k, pending, pendingTTL).Result()
        if err != nil {
            return 0, false, err
        }
        if ok {
            return 0, false, nil
        }
        v, err := s.rdb.Get(ctx, k).Result()
        if errors.Is(err, redis.Nil) {
            // Expired between SetNX and Get; claim again.
            continue
        }
        if err != nil {
            return 0, false, err
        }
        if v == pending {
            return 0, false, ErrInProgress
        }
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return 0, false, fmt.Errorf("corrupt idempotency value for %s: %w", k, err)
        }
        return id, true, nil
    }
    return 0, false, ErrInProgress
}

// Complete records reservationID as the outcome of key.
func (s *Store) Complete(ctx context.Context, userID uint64, key string, reservationID uint64) error {
    return s.rdb.Set(ctx, s.key(userID, key), strconv.FormatUint(reservationID, 10), s.ttl).Err()
}

// Abort releases a claimed key after a rejected request so the client may
// retry with the same key.
func (s *Store) Abort(ctx context.Context, userID uint64, key string) error {
    return s.rdb.Del(ctx, s.key(userID, key)).Err()
}
