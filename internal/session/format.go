// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/researchflow/pkg/types"
)

const abstractWidth = 300

// FormatTurn writes a human-readable rendering of t to w. Articles are
// numbered from 1 across every page merged into the turn.
func FormatTurn(w io.Writer, t Turn) {
	switch t := t.(type) {
	case UserTurn:
		fmt.Fprintf(w, "\nyou> %s\n", t.Text)
	case APITurn:
		fmt.Fprintf(w, "\nresearchflow> %s\n", t.Message)
		for i, a := range t.Articles {
			FormatArticle(w, i+1, a)
		}
	}
}

// FormatArticle writes one numbered article entry.
func FormatArticle(w io.Writer, n int, a types.Article) {
	fmt.Fprintf(w, "\n  [%d] %s\n", n, a.Title)
	if a.URL != "" {
		fmt.Fprintf(w, "      %s\n", a.URL)
	}
	if len(a.Authors) > 0 {
		fmt.Fprintf(w, "      Authors: %s\n", strings.Join(a.Authors, ", "))
	}
	year := "n/a"
	if a.Year > 0 {
		year = fmt.Sprintf("%d", a.Year)
	}
	fmt.Fprintf(w, "      Year: %s | Citations: %d\n", year, a.CitationCount)
	if a.Abstract != "" {
		fmt.Fprintf(w, "      %s\n", truncate(strings.Join(strings.Fields(a.Abstract), " "), abstractWidth))
	}
}

// FormatTable writes articles as a compact table, one row each.
func FormatTable(w io.Writer, articles []types.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-9s\n", "#", "Title", "Authors", "Year", "Citations")
	fmt.Fprintln(w, strings.Repeat("-", 105))
	for i, a := range articles {
		year := ""
		if a.Year > 0 {
			year = fmt.Sprintf("%d", a.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-9d\n",
			i+1, truncate(a.Title, 60), formatAuthors(a.Authors), year, a.CitationCount)
	}
	fmt.Fprintf(w, "\n%d articles\n", len(articles))
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
