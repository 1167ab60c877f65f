// Package redisstore provides a redis credential store.
//
// Values are stored as plain redis strings without expiry; the session owns
// the token lifecycle. An optional prefix namespaces the keys so several
// clients can share one redis database.
package redisstore

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-booking-client/credstore"
	"github.com/redis/go-redis/v9"
)

var _ credstore.Store = (*RedisStore)(nil)

// RedisStore is a redis backed credential store.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// Option configures a RedisStore.
type Option func(*RedisStore)

// WithPrefix namespaces every key with prefix.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) { s.prefix = prefix }
}

// New creates a RedisStore over an existing client.
func New(rdb *redis.Client, opts ...Option) *RedisStore {
	s := &RedisStore{rdb: rdb}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) Get(ctx context.Context, name string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, credstore.Wrap(credstore.OpGet, name, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, name, value string) error {
	return credstore.Wrap(credstore.OpSet, name, s.rdb.Set(ctx, s.key(name), value, 0).Err())
}

func (s *RedisStore) Remove(ctx context.Context, name string) error {
	return credstore.Wrap(credstore.OpRemove, name, s.rdb.Del(ctx, s.key(name)).Err())
}
