package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "livechess:session:"

// RedisSessions keeps sessions in redis with the token lifetime as key expiry.
type RedisSessions struct {
	client *redis.Client
}

// NewRedisSessions connects to redisURL and checks the connection.
func NewRedisSessions(ctx context.Context, redisURL string) (*RedisSessions, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisSessions{client: client}, nil
}

func (r *RedisSessions) Put(ctx context.Context, id, username string, ttl time.Duration) error {
	return r.client.Set(ctx, sessionPrefix+id, username, ttl).Err()
}

func (r *RedisSessions) Get(ctx context.Context, id string) (string, error) {
	username, err := r.client.Get(ctx, sessionPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	return username, err
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, sessionPrefix+id).Err()
}

func (r *RedisSessions) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, sessionPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close releases the redis connection pool.
func (r *RedisSessions) Close() error {
	return r.client.Close()
}
