// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/researchflow/internal/backend"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the search service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		st, err := newBackendClient(cfg).Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%s)\n", cfg.Backend.BaseURL, st.Status, st.Message)
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [url]",
	Short: "Ask the search service to summarize an article",
	Long: `Summarize sends an article URL (a PDF or a landing page) to the
service's summarize endpoint, or raw text with --text, and prints the
structured summary as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, _ := cmd.Flags().GetString("text")
		req := backend.SummarizeRequest{Text: text}
		if len(args) == 1 {
			req.URL = args[0]
		}

		sum, err := newBackendClient(loadConfig()).Summarize(cmd.Context(), req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	},
}

func init() {
	summarizeCmd.Flags().String("text", "", "article text to summarize instead of a URL")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(summarizeCmd)
}
