// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/researchflow/pkg/types"
)

// --- test helpers ---

func sampleArticle(url, title string) types.Article {
	return types.Article{
		URL:           url,
		Title:         title,
		Authors:       []string{"Ada Lovelace", "Charles Babbage"},
		Year:          1843,
		CitationCount: 42,
		Abstract:      "Notes on the analytical engine and " + title,
	}
}

// requireFTS5 skips t unless the sqlite_fts5 build tag is set.
func requireFTS5(t *testing.T) {
	t.Helper()
	if !fts5Enabled {
		t.Skip("sqlite favorites need -tags sqlite_fts5")
	}
}

// backends returns a constructor per backend under test. The sqlite backend
// needs the sqlite_fts5 build tag. The redis backend runs only when
// RESEARCHFLOW_TEST_REDIS_URL points at a scratch server.
func backends(t *testing.T) map[string]func(t *testing.T) Repository {
	t.Helper()
	m := map[string]func(t *testing.T) Repository{
		"bolt": func(t *testing.T) Repository {
			s, err := OpenBolt(filepath.Join(t.TempDir(), "fav.db"), zaptest.NewLogger(t))
			require.NoError(t, err)
			return s
		},
	}
	if fts5Enabled {
		m["sqlite"] = func(t *testing.T) Repository {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "fav.sqlite"), zaptest.NewLogger(t))
			require.NoError(t, err)
			return s
		}
	}
	if url := os.Getenv("RESEARCHFLOW_TEST_REDIS_URL"); url != "" {
		m["redis"] = func(t *testing.T) Repository {
			s, err := OpenRedis(context.Background(), url, zaptest.NewLogger(t))
			require.NoError(t, err)
			s.key = StorageKey + ":" + t.Name()
			t.Cleanup(func() { s.client.Del(context.Background(), s.key) })
			return s
		}
	}
	return m
}

// --- Repository contract ---

func TestRepositoryContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("add then exists", func(t *testing.T) {
				repo := open(t)
				defer repo.Close()
				ctx := context.Background()

				ok, err := repo.Exists(ctx, "https://example.org/a")
				require.NoError(t, err)
				assert.False(t, ok)

				require.NoError(t, repo.Add(ctx, sampleArticle("https://example.org/a", "A")))

				ok, err = repo.Exists(ctx, "https://example.org/a")
				require.NoError(t, err)
				assert.True(t, ok)
			})

			t.Run("duplicate url keeps one record", func(t *testing.T) {
				repo := open(t)
				defer repo.Close()
				ctx := context.Background()

				a := sampleArticle("https://example.org/dup", "Dup")
				require.NoError(t, repo.Add(ctx, a))
				assert.ErrorIs(t, repo.Add(ctx, a), ErrAlreadyExists)

				list, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Len(t, list, 1)
			})

			t.Run("list preserves order and fields", func(t *testing.T) {
				repo := open(t)
				defer repo.Close()
				ctx := context.Background()

				first := sampleArticle("https://example.org/1", "First")
				second := sampleArticle("https://example.org/2", "Second")
				second.Journal = "Nature"
				require.NoError(t, repo.Add(ctx, first))
				require.NoError(t, repo.Add(ctx, second))

				list, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Equal(t, []types.Article{first, second}, list)
			})

			t.Run("empty list", func(t *testing.T) {
				repo := open(t)
				defer repo.Close()

				list, err := repo.List(context.Background())
				require.NoError(t, err)
				assert.Empty(t, list)
			})

			t.Run("missing url rejected", func(t *testing.T) {
				repo := open(t)
				defer repo.Close()

				err := repo.Add(context.Background(), types.Article{Title: "no url"})
				assert.ErrorIs(t, err, ErrMissingURL)
			})

			t.Run("remove", func(t *testing.T) {
				repo := open(t)
				defer repo.Close()
				ctx := context.Background()

				require.NoError(t, repo.Add(ctx, sampleArticle("https://example.org/1", "One")))
				require.NoError(t, repo.Add(ctx, sampleArticle("https://example.org/2", "Two")))
				require.NoError(t, repo.Remove(ctx, "https://example.org/1"))
				assert.ErrorIs(t, repo.Remove(ctx, "https://example.org/1"), ErrNotFound)

				list, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, list, 1)
				assert.Equal(t, "https://example.org/2", list[0].URL)
			})
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fav.db")
	ctx := context.Background()

	s, err := OpenBolt(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, sampleArticle("https://example.org/a", "A")))
	require.NoError(t, s.Close())

	s, err = OpenBolt(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Exists(ctx, "https://example.org/a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteSearch(t *testing.T) {
	requireFTS5(t)
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "fav.sqlite"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	graph := sampleArticle("https://example.org/graph", "Spectral graph theory")
	graph.Abstract = "Eigenvalues of the Laplacian."
	nets := sampleArticle("https://example.org/nets", "Neural networks")
	nets.Abstract = "Backpropagation through layers."
	require.NoError(t, s.Add(ctx, graph))
	require.NoError(t, s.Add(ctx, nets))

	got, err := s.Search(ctx, "laplacian", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, graph.URL, got[0].URL)

	got, err = s.Search(ctx, "quantum", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Search(ctx, "  ", 10)
	assert.Error(t, err)
}

func TestSQLiteSearchSkipsRemoved(t *testing.T) {
	requireFTS5(t)
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "fav.sqlite"), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, sampleArticle("https://example.org/x", "Topology")))
	require.NoError(t, s.Remove(ctx, "https://example.org/x"))

	got, err := s.Search(ctx, "topology", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := Open(ctx, types.FavoritesConfig{}, dir, nil)
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, repo)
	require.NoError(t, repo.Close())
	assert.FileExists(t, filepath.Join(dir, "favorites.db"))

	if fts5Enabled {
		repo, err = Open(ctx, types.FavoritesConfig{Backend: types.FavoritesSQLite}, dir, nil)
		require.NoError(t, err)
		assert.IsType(t, &SQLiteStore{}, repo)
		require.NoError(t, repo.Close())
	}

	_, err = Open(ctx, types.FavoritesConfig{Backend: types.FavoritesRedis}, dir, nil)
	assert.Error(t, err)

	_, err = Open(ctx, types.FavoritesConfig{Backend: "mongo"}, dir, nil)
	assert.Error(t, err)
}

func TestNilLoggerDefaultsToNop(t *testing.T) {
	ctx := context.Background()
	stores := map[string]func() (Repository, error){
		"bolt": func() (Repository, error) {
			return repository(OpenBolt(filepath.Join(t.TempDir(), "fav.db"), nil))
		},
	}
	if fts5Enabled {
		stores["sqlite"] = func() (Repository, error) {
			return repository(OpenSQLite(filepath.Join(t.TempDir(), "fav.sqlite"), nil))
		}
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			repo, err := open()
			require.NoError(t, err)
			defer repo.Close()

			a := sampleArticle("https://example.org/a", "A")
			require.NoError(t, repo.Add(ctx, a))
			assert.ErrorIs(t, repo.Add(ctx, a), ErrAlreadyExists)
			require.NoError(t, repo.Remove(ctx, a.URL))
		})
	}
}
