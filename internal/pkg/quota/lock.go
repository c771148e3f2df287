package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serializes admission and insert for one subscriber.
type Locker interface {
	Lock(ctx context.Context, subscriberID uint) (unlock func(), err error)
}

// LockKey is the Redis key guarding a subscriber's quota.
func LockKey(subscriberID uint) string {
	return fmt.Sprintf("quota_lock:%d", subscriberID)
}

// KeyedMutex is an in-process Locker for single-instance deployments.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint]*keyedEntry
}

type keyedEntry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint]*keyedEntry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, subscriberID uint) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[subscriberID]
	if !ok {
		e = &keyedEntry{ch: make(chan struct{}, 1)}
		k.locks[subscriberID] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(subscriberID, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(subscriberID, e)
		})
	}, nil
}

func (k *KeyedMutex) release(subscriberID uint, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, subscriberID)
	}
}

// ErrLockTimeout is returned when a Redis lock cannot be acquired in time.
var ErrLockTimeout = errors.New("quota lock not acquired")

// RedisLocker is a Locker shared by every instance using the same Redis.
// A lock expires after ttl if its holder dies.
type RedisLocker struct {
	client   *redis.Client
	ttl      time.Duration
	wait     time.Duration
	interval time.Duration
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisLocker(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl, wait: wait, interval: 25 * time.Millisecond}
}

func (l *RedisLocker) Lock(ctx context.Context, subscriberID uint) (func(), error) {
	key := LockKey(subscriberID)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire quota lock: %w", err)
		}
		if ok {
			return func() {
				// fresh context: the caller's may already be cancelled
				_ = unlockScript.Run(context.Background(), l.client, []string{key}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrLockTimeout
		case <-time.After(l.interval):
		}
	}
}
