// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings for calls to the search service.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "researchflow/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BackendConfig holds settings for the remote search service client.
type BackendConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root, e.g. "http://localhost:8000/api". The
	// search, status and summarize paths are appended to it.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// APIToken is sent as a bearer token when set.
	APIToken string `json:"api_token,omitempty" yaml:"api_token,omitempty"`

	// MaxRetries is the number of retries on HTTP 429/503. Zero disables
	// retrying so a failed attempt is terminal.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FavoritesBackend identifies the storage used for saved articles.
type FavoritesBackend string

const (
	FavoritesBolt   FavoritesBackend = "bolt"
	FavoritesSQLite FavoritesBackend = "sqlite"
	FavoritesRedis  FavoritesBackend = "redis"
)

// FavoritesConfig holds settings for the favorites repository.
type FavoritesConfig struct {
	// Backend selects the store: bolt, sqlite, or redis.
	Backend FavoritesBackend `json:"backend" yaml:"backend"`

	// Path is the database file for the bolt and sqlite backends.
	Path string `json:"path" yaml:"path"`

	// RedisURL is the connection URL for the redis backend.
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
}

// Config groups all researchflow settings.
type Config struct {
	Backend   BackendConfig   `json:"backend" yaml:"backend"`
	Favorites FavoritesConfig `json:"favorites" yaml:"favorites"`

	// LogLevel is the zap level for diagnostics ("" disables logging).
	LogLevel string `json:"log_level" yaml:"log_level"`
}
