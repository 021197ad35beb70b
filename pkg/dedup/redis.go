package dedup

import (
	"context"
	"errors"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/cache"
	"github.com/matzehuels/trigen/pkg/canon"
)

// RedisFactory keeps one redis set per bucket.
type RedisFactory struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to addr and checks the connection.
func OpenRedis(ctx context.Context, addr, prefix string) (*RedisFactory, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := cache.RetryWithBackoff(ctx, cache.DefaultBackoff, func() error {
		return retryableNet(client.Ping(ctx).Err())
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	if prefix == "" {
		prefix = "trigen"
	}
	return &RedisFactory{client: client, prefix: prefix}, nil
}

// Backend implements StoreFactory.
func (*RedisFactory) Backend() string { return "redis" }

// Open implements StoreFactory.
func (f *RedisFactory) Open(_ context.Context, b bucket.Bucket) (Store, error) {
	return &redisStore{client: f.client, key: f.prefix + ":certs:" + b.String()}, nil
}

// Close implements StoreFactory.
func (f *RedisFactory) Close() error { return f.client.Close() }

type redisStore struct {
	client *redis.Client
	key    string
}

// Admit adds the certificate with SADD; a count of one means it was new.
func (s *redisStore) Admit(ctx context.Context, cert canon.Certificate) (bool, error) {
	var added int64
	err := cache.RetryWithBackoff(ctx, cache.DefaultBackoff, func() error {
		var err error
		added, err = s.client.SAdd(ctx, s.key, string(cert)).Result()
		return retryableNet(err)
	})
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (s *redisStore) Len(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.key).Result()
	return int(n), err
}

func (s *redisStore) Close() error { return nil }

// retryableNet marks network errors as retryable.
func retryableNet(err error) error {
	var ne net.Error
	if errors.As(err, &ne) {
		return cache.Retryable(err)
	}
	return err
}
