// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/pkg/types"
)

// maxTxRetries bounds optimistic-lock retries when another client writes
// the favorites key concurrently.
const maxTxRetries = 5

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps the favorites list as one JSON string under StorageKey.
// Mutations use WATCH/MULTI so concurrent writers do not lose updates.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// OpenRedis connects to the redis server at redisURL and pings it.
func OpenRedis(ctx context.Context, redisURL string, logger *zap.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisStore(client, logger), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, key: StorageKey, logger: logger}
}

// Exists reports whether an article with url is saved.
func (s *RedisStore) Exists(ctx context.Context, url string) (bool, error) {
	list, err := s.load(ctx, s.client)
	if err != nil {
		return false, err
	}
	return indexOf(list, url) >= 0, nil
}

// Add appends article unless its URL is already saved.
func (s *RedisStore) Add(ctx context.Context, article types.Article) error {
	err := s.update(ctx, func(list []types.Article) ([]types.Article, error) {
		return appendUnique(list, article)
	})
	if err == nil {
		s.logger.Debug("favorite saved", zap.String("url", article.URL))
	}
	return err
}

// List returns saved articles in the order they were added.
func (s *RedisStore) List(ctx context.Context) ([]types.Article, error) {
	return s.load(ctx, s.client)
}

// Remove deletes the article with url.
func (s *RedisStore) Remove(ctx context.Context, url string) error {
	return s.update(ctx, func(list []types.Article) ([]types.Article, error) {
		return removeURL(list, url)
	})
}

// Close closes the redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) load(ctx context.Context, c getter) ([]types.Article, error) {
	data, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []types.Article{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	var list []types.Article
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.key, err)
	}
	return list, nil
}

func (s *RedisStore) update(ctx context.Context, fn func([]types.Article) ([]types.Article, error)) error {
	txf := func(tx *redis.Tx) error {
		list, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		list, err = fn(list)
		if err != nil {
			return err
		}
		data, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", s.key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("favorites key changed during update, retrying", zap.Int("attempt", i+1))
			continue
		}
		return err
	}
	return fmt.Errorf("updating %s: too much contention", s.key)
}

var _ Repository = (*RedisStore)(nil)
