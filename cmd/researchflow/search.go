// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/researchflow/internal/session"
	"github.com/pdiddy/researchflow/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a single search and print one page of articles",
	Long: `Search sends one query to the search service and prints the returned
page. Use --offset to fetch later pages (multiples of 25) and --json for
machine-readable output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	now := time.Now()
	searchCmd.Flags().String("sort", string(types.SortDefault), "sort mode: default, relevance, or recency")
	searchCmd.Flags().Int("from", session.DefaultYearFrom, "earliest publication year")
	searchCmd.Flags().Int("to", now.Year(), "latest publication year")
	searchCmd.Flags().Bool("open-access", false, "only open-access articles")
	searchCmd.Flags().Int("offset", 0, "result offset (multiples of 25)")
	searchCmd.Flags().Bool("json", false, "output the raw response as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("query is empty")
	}

	sortFlag, _ := cmd.Flags().GetString("sort")
	mode, err := types.ParseSortMode(sortFlag)
	if err != nil {
		return err
	}
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	openAccess, _ := cmd.Flags().GetBool("open-access")
	offset, _ := cmd.Flags().GetInt("offset")
	if offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}

	filters := session.FilterState{SortBy: mode, YearFrom: from, YearTo: to, OpenAccess: openAccess}
	if err := filters.Validate(time.Now()); err != nil {
		return err
	}

	client := newBackendClient(loadConfig())
	resp, err := client.Search(cmd.Context(), types.SearchRequest{
		Query:        query,
		SortBy:       filters.SortBy,
		YearFrom:     filters.YearFrom,
		YearTo:       filters.YearTo,
		Offset:       offset,
		IsOpenAccess: filters.OpenAccess,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintln(out, resp.Message)
	for i, a := range resp.Articles {
		session.FormatArticle(out, offset+i+1, a)
	}
	if len(resp.Articles) == session.PageSize {
		fmt.Fprintf(out, "\nMore results: --offset %d\n", offset+session.PageSize)
	}
	return nil
}
