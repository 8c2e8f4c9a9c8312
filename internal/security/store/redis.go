package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"pacta/config"
	"pacta/internal/errors"
)

// redisStore backs the GuardStore with Redis so CSRF tokens, rate-limit
// windows and lockout records can be shared across instances.
type redisStore struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed GuardStore from the given client.
func NewRedis(client redis.UniversalClient) GuardStore {
	return &redisStore{client: client}
}

// NewRedisClient builds the go-redis client from configuration.
func NewRedisClient(cfg *config.RedisConfig) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, errors.Wrapf(ErrUnavailable, "get: %v", err)
	}

	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrapf(ErrUnavailable, "set: %v", err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(ErrUnavailable, "delete: %v", err)
	}

	return nil
}

func (s *redisStore) GetDel(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, errors.Wrapf(ErrUnavailable, "getdel: %v", err)
	}

	return value, true, nil
}

func (s *redisStore) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "incr: %v", err)
	}

	// Window semantics: the TTL is set only for the first hit in the window.
	if count == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, errors.Wrapf(ErrUnavailable, "expire: %v", err)
		}
	}

	return count, nil
}

func (s *redisStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "ttl: %v", err)
	}
	if ttl < 0 {
		// -1 no expiry, -2 missing key; neither carries a usable deadline.
		return 0, nil
	}

	return ttl, nil
}
