// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the researchflow CLI, a chat-style
// client for a remote academic article search service.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/internal/logging"
	"github.com/pdiddy/researchflow/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultBaseURL   = "http://localhost:8000/api"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "researchflow/0.1"
)

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the diagnostics logger built from log.level.
var logger = zap.NewNop()

// rootCmd is the base command for the researchflow CLI.
var rootCmd = &cobra.Command{
	Use:   "researchflow",
	Short: "Chat with an academic article search service",
	Long: `researchflow sends natural-language research questions to a search
service and shows matching articles as a conversation. Results arrive in
pages of 25; ask for more to extend the latest answer. Articles you like can
be saved to a local favorites store and exported as JSON, YAML, or CSL.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(viper.GetString("log.level"))
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(viper.GetString("secrets_dir"), logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./researchflow.yaml or ~/.config/researchflow/config.yaml)")
	pf.String("base-url", defaultBaseURL, "search service API root")
	pf.Duration("timeout", defaultTimeout, "HTTP request timeout")
	pf.Int("max-retries", 0, "retries on HTTP 429/503 (0 = fail on first error)")
	pf.String("favorites-backend", "bolt", "favorites store: bolt, sqlite, or redis")
	pf.String("favorites-path", "", "favorites database file (default: <data-dir>/favorites.db)")
	pf.String("redis-url", "", "redis URL for the redis favorites backend")
	pf.String("data-dir", defaultDataDir(), "directory for local data")
	pf.String("log-level", "", "diagnostic log level: debug, info, warn, error (default off)")

	bind := map[string]string{
		"backend.base_url":    "base-url",
		"backend.timeout":     "timeout",
		"backend.max_retries": "max-retries",
		"favorites.backend":   "favorites-backend",
		"favorites.path":      "favorites-path",
		"favorites.redis_url": "redis-url",
		"data_dir":            "data-dir",
		"log.level":           "log-level",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
	viper.SetDefault("backend.user_agent", defaultUserAgent)
	viper.SetDefault("secrets_dir", ".secrets/")
}

func initConfig() {
	if err := secrets.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("researchflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "researchflow"))
		}
	}

	viper.SetEnvPrefix("RESEARCHFLOW")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "researchflow")
	}
	return ".researchflow"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
