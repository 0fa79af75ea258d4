// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/researchflow/pkg/types"
)

func seededBolt(t *testing.T, articles ...types.Article) Repository {
	t.Helper()
	s, err := OpenBolt(filepath.Join(t.TempDir(), "fav.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	for _, a := range articles {
		require.NoError(t, s.Add(context.Background(), a))
	}
	return s
}

func TestExportJSON(t *testing.T) {
	a := sampleArticle("https://example.org/a", "A")
	repo := seededBolt(t, a)

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), repo, ExportJSON, &buf))

	var got []types.Article
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []types.Article{a}, got)
	assert.Contains(t, buf.String(), `"citationCount": 42`)
}

func TestExportYAML(t *testing.T) {
	repo := seededBolt(t, sampleArticle("https://example.org/a", "A"))

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), repo, ExportYAML, &buf))
	assert.Contains(t, buf.String(), "citation_count: 42")
	assert.Contains(t, buf.String(), "url: https://example.org/a")
}

func TestExportUnknownFormat(t *testing.T) {
	repo := seededBolt(t)
	err := Export(context.Background(), repo, "bibtex", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFormatCSL(t *testing.T) {
	articles := []types.Article{
		{
			URL:     "https://arxiv.org/abs/1706.03762",
			Title:   "Attention Is All You Need",
			Authors: []string{"Ashish Vaswani", "Noam Shazeer"},
			Year:    2017,
			Journal: "NeurIPS",
		},
		{
			URL:     "https://example.org/anon",
			Title:   "Anonymous note",
			Journal: "N/A",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatCSL(articles, &buf))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "Vaswani2017", items[0].ID)
	assert.Equal(t, "article-journal", items[0].Type)
	assert.Equal(t, "NeurIPS", items[0].ContainerTitle)
	assert.Equal(t, []CSLName{{Given: "Ashish", Family: "Vaswani"}, {Given: "Noam", Family: "Shazeer"}}, items[0].Author)
	require.NotNil(t, items[0].Issued)
	assert.Equal(t, [][]int{{2017}}, items[0].Issued.DateParts)

	assert.Equal(t, "item2", items[1].ID)
	assert.Equal(t, "article", items[1].Type)
	assert.Empty(t, items[1].ContainerTitle)
	assert.Nil(t, items[1].Issued)
}

func TestFormatCSLDisambiguatesKeys(t *testing.T) {
	articles := []types.Article{
		{URL: "https://example.org/1", Title: "One", Authors: []string{"John Smith"}, Year: 2020},
		{URL: "https://example.org/2", Title: "Two", Authors: []string{"Ada Lovelace"}, Year: 1843},
		{URL: "https://example.org/3", Title: "Three", Authors: []string{"Jane Smith"}, Year: 2020},
		{URL: "https://example.org/4", Title: "Four", Authors: []string{"Sam Smith"}, Year: 2021},
	}

	var buf bytes.Buffer
	require.NoError(t, FormatCSL(articles, &buf))

	var items []CSLItem
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{"Smith2020a", "Lovelace1843", "Smith2020b", "Smith2021"}, ids)
}

func TestKeySuffix(t *testing.T) {
	assert.Equal(t, "a", keySuffix(0))
	assert.Equal(t, "z", keySuffix(25))
	assert.Equal(t, "aa", keySuffix(26))
	assert.Equal(t, "ab", keySuffix(27))
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want CSLName
	}{
		{"Ada Lovelace", CSLName{Given: "Ada", Family: "Lovelace"}},
		{"John von Neumann", CSLName{Given: "John von", Family: "Neumann"}},
		{"Plato", CSLName{Literal: "Plato"}},
		{"  ", CSLName{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseAuthorName(tt.in))
		})
	}
}
