// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/researchflow/internal/backend"
	"github.com/pdiddy/researchflow/internal/favorites"
	"github.com/pdiddy/researchflow/internal/secrets"
	"github.com/pdiddy/researchflow/pkg/types"
)

// envKeyReplacer maps nested keys to env names, e.g. backend.base_url to
// RESEARCHFLOW_BACKEND_BASE_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// loadConfig assembles the typed configuration from viper.
func loadConfig() types.Config {
	return types.Config{
		Backend: types.BackendConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("backend.timeout"),
				UserAgent: viper.GetString("backend.user_agent"),
			},
			BaseURL:    viper.GetString("backend.base_url"),
			APIToken:   secrets.Pick(loadedSecrets, secrets.APIToken, viper.GetString("backend.api_token")),
			MaxRetries: viper.GetInt("backend.max_retries"),
		},
		Favorites: types.FavoritesConfig{
			Backend:  types.FavoritesBackend(viper.GetString("favorites.backend")),
			Path:     viper.GetString("favorites.path"),
			RedisURL: viper.GetString("favorites.redis_url"),
		},
		LogLevel: viper.GetString("log.level"),
	}
}

func newBackendClient(cfg types.Config) *backend.Client {
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = defaultTimeout
	}
	return backend.NewClient(cfg.Backend, logger)
}

func openFavorites(ctx context.Context, cfg types.Config) (favorites.Repository, error) {
	return favorites.Open(ctx, cfg.Favorites, viper.GetString("data_dir"), logger)
}
