package store

import (
	"context"

	"github.com/eliseohh/keralastatsbot/internal/fault"
	"github.com/redis/go-redis/v9"
)

// RedisStore writes plain SET key value.
//
// Unpooled (the default) dials a new connection for every Set and closes it
// afterwards, so a broken connection never outlives the message that hit it.
type RedisStore struct {
	opts   *redis.Options
	client *redis.Client // nil unless pooled
}

func NewRedis(url string, pooled bool) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fault.New(fault.Store, "parse redis url", err)
	}

	s := &RedisStore{opts: opts}
	if pooled {
		s.client = redis.NewClient(opts)
	}
	return s, nil
}

func (s *RedisStore) conn() (*redis.Client, func()) {
	if s.client != nil {
		return s.client, func() {}
	}
	c := redis.NewClient(s.opts)
	return c, func() { c.Close() }
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	c, done := s.conn()
	defer done()

	if err := c.Set(ctx, key, value, 0).Err(); err != nil {
		return fault.New(fault.Store, "set "+key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	c, done := s.conn()
	defer done()

	v, err := c.Get(ctx, key).Result()
	if err != nil {
		return "", fault.New(fault.Store, "get "+key, err)
	}
	return v, nil
}

func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
