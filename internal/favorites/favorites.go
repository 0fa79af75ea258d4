// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package favorites persists articles the user saved from search results.
// Every backend keeps at most one record per article URL.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/pkg/types"
)

// StorageKey is the fixed key under which key/value backends hold the
// JSON-encoded favorites list.
const StorageKey = "researchFlowFavorites"

var (
	// ErrAlreadyExists is returned by Add when an article with the same URL
	// is already saved.
	ErrAlreadyExists = errors.New("article already saved")

	// ErrNotFound is returned by Remove when no article has the URL.
	ErrNotFound = errors.New("article not saved")

	// ErrMissingURL is returned when an article has no URL to key it by.
	ErrMissingURL = errors.New("article has no url")
)

// Repository stores saved articles keyed by URL.
type Repository interface {
	Exists(ctx context.Context, url string) (bool, error)
	Add(ctx context.Context, article types.Article) error
	List(ctx context.Context) ([]types.Article, error)
	Remove(ctx context.Context, url string) error
	Close() error
}

// Searchable is implemented by backends with a full-text index.
type Searchable interface {
	Search(ctx context.Context, query string, limit int) ([]types.Article, error)
}

// Open returns the Repository selected by cfg.Backend. An empty backend
// defaults to bolt; an empty path defaults to a file under dataDir.
func Open(ctx context.Context, cfg types.FavoritesConfig, dataDir string, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Backend {
	case types.FavoritesBolt, "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, "favorites.db")
		}
		return repository(OpenBolt(path, logger))
	case types.FavoritesSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, "favorites.sqlite")
		}
		return repository(OpenSQLite(path, logger))
	case types.FavoritesRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("favorites backend redis requires a redis_url")
		}
		return repository(OpenRedis(ctx, cfg.RedisURL, logger))
	default:
		return nil, fmt.Errorf("unsupported favorites backend %q: use bolt, sqlite, or redis", cfg.Backend)
	}
}

// repository keeps a failed open from returning a non-nil interface that
// wraps a nil store.
func repository(store Repository, err error) (Repository, error) {
	if err != nil {
		return nil, err
	}
	return store, nil
}

// appendUnique adds article to list unless its URL is already present.
// Shared by the key/value backends that store the whole list under
// StorageKey.
func appendUnique(list []types.Article, article types.Article) ([]types.Article, error) {
	if article.URL == "" {
		return list, ErrMissingURL
	}
	if indexOf(list, article.URL) >= 0 {
		return list, ErrAlreadyExists
	}
	return append(list, article), nil
}

// removeURL drops the article with url from list.
func removeURL(list []types.Article, url string) ([]types.Article, error) {
	idx := indexOf(list, url)
	if idx < 0 {
		return list, ErrNotFound
	}
	out := make([]types.Article, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...), nil
}

func indexOf(list []types.Article, url string) int {
	for i, a := range list {
		if a.URL == url {
			return i
		}
	}
	return -1
}
