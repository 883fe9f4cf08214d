package database

import (
	"context"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
)

// RedisStore prefixes every key so the store can share a redis database.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

const redisKeyPrefix = "shoppa:"

func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrapf(err, "error connecting to redis: %s", addr)
	}
	return &RedisStore{rdb: rdb, prefix: redisKeyPrefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "error reading key: %s", key)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(s.rdb.Set(ctx, s.prefix+key, value, 0).Err(), "error writing key: %s", key)
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return errors.Wrapf(s.rdb.Del(ctx, s.prefix+key).Err(), "error removing key: %s", key)
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
