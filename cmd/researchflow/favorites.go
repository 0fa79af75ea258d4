// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/researchflow/internal/favorites"
	"github.com/pdiddy/researchflow/internal/session"
)

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved articles (list, search, remove, export)",
	Long: `Favorites manages the articles saved from chat with /save. The store
is selected with --favorites-backend: a local bbolt file (default), a
SQLite database with full-text search, or a redis server.`,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openFavorites(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		list, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}
		session.FormatTable(cmd.OutOrStdout(), list)
		return nil
	},
}

var favoritesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over saved articles (sqlite backend)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openFavorites(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		s, ok := repo.(favorites.Searchable)
		if !ok {
			return fmt.Errorf("favorites backend does not support search: use --favorites-backend sqlite")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		list, err := s.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		session.FormatTable(cmd.OutOrStdout(), list)
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove [url]",
	Short: "Remove a saved article by URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openFavorites(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		err = repo.Remove(cmd.Context(), args[0])
		if errors.Is(err, favorites.ErrNotFound) {
			return fmt.Errorf("%s is not in your favorites", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var favoritesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved articles as JSON, YAML, or CSL-YAML",
	Long: `Export writes every saved article to stdout or --output. The csl
format produces a CSL-YAML bibliography usable with Pandoc --citeproc.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openFavorites(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		defer repo.Close()

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		return favorites.Export(cmd.Context(), repo, favorites.ExportFormat(format), w)
	},
}

func init() {
	favoritesSearchCmd.Flags().Int("limit", 20, "maximum results")
	favoritesExportCmd.Flags().String("format", "json", "export format: json, yaml, or csl")
	favoritesExportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesSearchCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesExportCmd)

	rootCmd.AddCommand(favoritesCmd)
}
