package configstore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPersister keeps the config cache in a Redis hash keyed by a fixed
// storage name per user.
type RedisPersister struct {
	Client *redis.Client
	Key    string
}

func NewRedisPersister(c *redis.Client, user string) *RedisPersister {
	return &RedisPersister{Client: c, Key: "fgconfig:" + user}
}

func (p *RedisPersister) Save(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}
	return p.Client.HSet(ctx, p.Key, fields).Err()
}

func (p *RedisPersister) Load(ctx context.Context) (map[string]string, error) {
	return p.Client.HGetAll(ctx, p.Key).Result()
}
