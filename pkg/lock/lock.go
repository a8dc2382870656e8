// Package lock serialises critical sections by key. Order placement takes
// one lock per customer so two checkouts of the same cart cannot interleave.
//
//	unlock, err := locker.Lock(ctx, "order:place:42", 10*time.Second)
//	if err != nil {
//	    return err
//	}
//	defer unlock(context.Background())
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when ctx ends before the lock is obtained.
var ErrNotAcquired = errors.New("lock: not acquired")

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// Locker hands out mutually exclusive locks by key.
type Locker interface {
	// Lock blocks until key is held or ctx is done. ttl bounds how long a
	// crashed holder can keep the key in a distributed implementation.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// New returns a Redis locker when rdb is non-nil, else an in-process one.
func New(rdb *redis.Client) Locker {
	if rdb != nil {
		return NewRedis(rdb)
	}
	return NewLocal()
}

// ─── In-process ──────────────────────────────────────────────────────────────

// Local is a keyed mutex for single-instance deployments and tests.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{} // buffered(1): holds a token while locked
	refs int
}

func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

func (l *Local) Lock(ctx context.Context, key string, _ time.Duration) (UnlockFunc, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, s)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.drop(key, s)
		})
		return nil
	}, nil
}

func (l *Local) drop(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// releaseScript deletes the key only if it still holds our token, so an
// expired holder can never release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis implements Locker with SET NX PX and a compare-and-delete release.
type Redis struct {
	rdb        *redis.Client
	prefix     string
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{
		rdb:        rdb,
		prefix:     "storefront:lock:",
		minBackoff: 10 * time.Millisecond,
		maxBackoff: 200 * time.Millisecond,
	}
}

func (r *Redis) Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error) {
	full := r.prefix + key
	token := uuid.NewString()
	backoff := r.minBackoff

	for {
		ok, err := r.rdb.SetNX(ctx, full, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
			}
			return nil, fmt.Errorf("lock: redis setnx %s: %w", key, err)
		}
		if ok {
			break
		}

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-t.C:
		}
		if backoff *= 2; backoff > r.maxBackoff {
			backoff = r.maxBackoff
		}
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.rdb, []string{full}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("lock: release %s: %w", key, err)
		}
		return nil
	}, nil
}
