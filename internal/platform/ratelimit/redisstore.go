package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore backs the limiter with Redis INCR/EXPIRE instead of the
// shared store, for deployments that want quota counters off the primary
// data path entirely (§ domain stack: "Per-IP/per-user quota + JWKS hot
// cache" -> redis/go-redis/v9). Selecting this over store.MongoStore's
// IncrementWindow is a deployment choice; both satisfy WindowStore.
type RedisWindowStore struct {
	Client *redis.Client
}

func NewRedisWindowStore(client *redis.Client) *RedisWindowStore {
	return &RedisWindowStore{Client: client}
}

// IncrementWindow atomically increments the counter at pk/sk and sets its
// expiry to ttl on first creation, mirroring the conditional-increment
// semantics of store.Store.IncrementWindow.
func (r *RedisWindowStore) IncrementWindow(ctx context.Context, pk, sk string, ttl time.Time) (int64, error) {
	key := pk + "#" + sk

	count, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		r.Client.ExpireAt(ctx, key, ttl)
	}

	return count, nil
}
