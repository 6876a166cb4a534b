// Package formguard implements the per-form-instance busy flag: while one submission of a form
// instance is running, further submissions of that instance are rejected instead of queued.
package formguard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBusy is returned when the form instance already has a submission in flight.
var ErrBusy = errors.New("form submission in progress")

const keyPrefix = "formguard:"

// Guard hands out busy flags keyed by form instance.
type Guard interface {
	Acquire(ctx context.Context, instance string) (release func(), err error)
}

// New picks the Redis-backed guard when a client is available, the in-process one otherwise.
func New(client *redis.Client, ttl time.Duration) Guard {
	if client != nil {
		return NewRedisGuard(client, ttl)
	}
	return NewMemoryGuard(ttl)
}

// releaseScript deletes the flag only if it still holds our token, so an expired flag taken
// over by another submission is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisGuard stores busy flags with SET NX so every API replica sees the same flag.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard constructs a RedisGuard.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{client: client, ttl: ttl}
}

// Acquire sets the busy flag or returns ErrBusy.
func (g *RedisGuard) Acquire(ctx context.Context, instance string) (func(), error) {
	key := keyPrefix + instance
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire form guard %s: %w", instance, err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err()
	}, nil
}

// MemoryGuard keeps busy flags in process memory.
type MemoryGuard struct {
	ttl   time.Duration
	mu    sync.Mutex
	flags map[string]memoryFlag
	now   func() time.Time
}

type memoryFlag struct {
	token   string
	expires time.Time
}

// NewMemoryGuard constructs a MemoryGuard.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MemoryGuard{ttl: ttl, flags: make(map[string]memoryFlag), now: time.Now}
}

// Acquire sets the busy flag or returns ErrBusy.
func (g *MemoryGuard) Acquire(_ context.Context, instance string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if flag, ok := g.flags[instance]; ok && now.Before(flag.expires) {
		return nil, ErrBusy
	}
	token := uuid.NewString()
	g.flags[instance] = memoryFlag{token: token, expires: now.Add(g.ttl)}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if flag, ok := g.flags[instance]; ok && flag.token == token {
			delete(g.flags, instance)
		}
	}, nil
}
