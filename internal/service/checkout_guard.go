package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/spec-kit/grocery-service/pkg/util/errorutil"
)

// CheckoutGuard holds the single in-flight flag per customer that stops a
// second checkout while one is outstanding.
type CheckoutGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// releaseIfOwner deletes the flag only when it still carries our token, so an
// expired flag re-acquired by another request is left alone.
var releaseIfOwner = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0`)

type redisCheckoutGuard struct {
	client *redis.Client
}

// NewRedisCheckoutGuard stores flags as checkout:inflight:<key> with SET NX.
func NewRedisCheckoutGuard(client *redis.Client) CheckoutGuard {
	return &redisCheckoutGuard{client: client}
}

func (g *redisCheckoutGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	redisKey := "checkout:inflight:" + key
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, redisKey, token, ttl).Result()
	if err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	if !ok {
		return nil, apperrors.ErrCheckoutInProgress.With(map[string]any{"customer_id": key})
	}
	return func() {
		_ = releaseIfOwner.Run(context.Background(), g.client, []string{redisKey}, token).Err()
	}, nil
}

type memoryCheckoutGuard struct {
	mu       sync.Mutex
	inFlight map[string]time.Time
	now      func() time.Time
}

// NewMemoryCheckoutGuard is used when Redis is not configured.
func NewMemoryCheckoutGuard() CheckoutGuard {
	return &memoryCheckoutGuard{inFlight: make(map[string]time.Time), now: time.Now}
}

func (g *memoryCheckoutGuard) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expires, ok := g.inFlight[key]; ok && now.Before(expires) {
		return nil, apperrors.ErrCheckoutInProgress.With(map[string]any{"customer_id": key})
	}
	expires := now.Add(ttl)
	g.inFlight[key] = expires
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if current, ok := g.inFlight[key]; ok && current.Equal(expires) {
			delete(g.inFlight, key)
		}
	}, nil
}
