package refrepo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "payref:"
	ttl       = time.Hour
)

type redisRepo struct {
	rdb *redis.Client
}

// NewRedis connects to Redis so reference mappings survive process restarts
// and are visible to every instance behind the load balancer.
func NewRedis(ctx context.Context, url string) (Repo, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return &redisRepo{rdb: rdb}, nil
}

func (r *redisRepo) Put(ctx context.Context, clientRef, gatewayRef string) error {
	return r.rdb.Set(ctx, keyPrefix+clientRef, gatewayRef, ttl).Err()
}

func (r *redisRepo) Resolve(ctx context.Context, clientRef string) (string, error) {
	v, err := r.rdb.Get(ctx, keyPrefix+clientRef).Result()
	if errors.Is(err, redis.Nil) {
		return clientRef, nil
	}
	if err != nil {
		return "", err
	}
	if v == "" {
		return clientRef, nil
	}
	return v, nil
}
