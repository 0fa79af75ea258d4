// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/researchflow/pkg/types"
)

// ExportFormat selects how Export serializes the favorites list.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
	ExportCSL  ExportFormat = "csl"
)

// Export writes every saved article in repo to w in the given format.
func Export(ctx context.Context, repo Repository, format ExportFormat, w io.Writer) error {
	list, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("listing favorites for export: %w", err)
	}

	switch format {
	case ExportJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case ExportYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(list)
	case ExportCSL:
		return FormatCSL(list, w)
	default:
		return fmt.Errorf("unsupported export format %q: use json, yaml, or csl", format)
	}
}

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// Field names follow the CSL-YAML schema so output is consumable by Pandoc
// and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes articles as a CSL-YAML list to w. Articles that share a
// citation key get letter suffixes in list order (Smith2020a, Smith2020b).
func FormatCSL(articles []types.Article, w io.Writer) error {
	items := make([]CSLItem, len(articles))
	for i, a := range articles {
		items[i] = toCSLItem(a, i)
	}
	disambiguateKeys(items)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(a types.Article, idx int) CSLItem {
	item := CSLItem{
		ID:             citationKey(a, idx),
		Type:           "article-journal",
		Title:          a.Title,
		Abstract:       a.Abstract,
		ContainerTitle: a.Journal,
		URL:            a.URL,
	}
	if a.Journal == "" || a.Journal == "N/A" {
		item.Type = "article"
		item.ContainerTitle = ""
	}
	for _, name := range a.Authors {
		item.Author = append(item.Author, parseAuthorName(name))
	}
	if a.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{a.Year}}}
	}
	return item
}

// citationKey builds a Pandoc-style key such as "Vaswani2017". Articles
// without authors fall back to a positional key.
func citationKey(a types.Article, idx int) string {
	family := ""
	if len(a.Authors) > 0 {
		n := parseAuthorName(a.Authors[0])
		family = n.Family
		if family == "" {
			family = n.Literal
		}
	}
	family = strings.Join(strings.Fields(family), "")
	if family == "" {
		return fmt.Sprintf("item%d", idx+1)
	}
	if a.Year > 0 {
		return fmt.Sprintf("%s%d", family, a.Year)
	}
	return family
}

func disambiguateKeys(items []CSLItem) {
	counts := make(map[string]int, len(items))
	for _, it := range items {
		counts[it.ID]++
	}
	used := make(map[string]int, len(counts))
	for i, it := range items {
		if counts[it.ID] < 2 {
			continue
		}
		n := used[it.ID]
		used[it.ID]++
		items[i].ID = it.ID + keySuffix(n)
	}
}

// keySuffix returns a, b, ..., z, then aa, ab, ...
func keySuffix(n int) string {
	s := ""
	for {
		s = string(rune('a'+n%26)) + s
		n = n/26 - 1
		if n < 0 {
			return s
		}
	}
}

// parseAuthorName splits a full name into CSL family/given parts on the
// last space. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
