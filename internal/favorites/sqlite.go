// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/pkg/types"
)

const defaultSearchLimit = 20

// SQLiteStore keeps favorites in a SQLite table keyed by URL with an FTS5
// index over title and abstract.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating favorites directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS favorites (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT NOT NULL UNIQUE,
			title TEXT,
			authors TEXT,
			year INTEGER,
			citation_count INTEGER,
			abstract TEXT,
			journal TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='favorites_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE favorites_fts USING fts5(title, abstract, content=favorites, content_rowid=rowid)`,
		`CREATE TRIGGER favorites_ai AFTER INSERT ON favorites BEGIN
			INSERT INTO favorites_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
		END`,
		`CREATE TRIGGER favorites_ad AFTER DELETE ON favorites BEGIN
			INSERT INTO favorites_fts(favorites_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// Exists reports whether an article with url is saved.
func (s *SQLiteStore) Exists(ctx context.Context, url string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM favorites WHERE url = ?`, url).Scan(&n); err != nil {
		return false, fmt.Errorf("checking favorite: %w", err)
	}
	return n > 0, nil
}

// Add inserts article; a URL already present yields ErrAlreadyExists.
func (s *SQLiteStore) Add(ctx context.Context, article types.Article) error {
	if article.URL == "" {
		return ErrMissingURL
	}
	authorsJSON, _ := json.Marshal(article.Authors)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (url, title, authors, year, citation_count, abstract, journal)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		article.URL, article.Title, string(authorsJSON), article.Year,
		article.CitationCount, article.Abstract, article.Journal,
	)
	var sqlErr sqlite3.Error
	if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting favorite: %w", err)
	}
	s.logger.Debug("favorite saved", zap.String("url", article.URL))
	return nil
}

// List returns saved articles in insertion order.
func (s *SQLiteStore) List(ctx context.Context) ([]types.Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title, authors, year, citation_count, abstract, journal
		 FROM favorites ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// Search runs an FTS5 query over title and abstract, best match first.
func (s *SQLiteStore) Search(ctx context.Context, query string, limit int) ([]types.Article, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is empty")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT f.url, f.title, f.authors, f.year, f.citation_count, f.abstract, f.journal
		 FROM favorites_fts
		 JOIN favorites f ON f.rowid = favorites_fts.rowid
		 WHERE favorites_fts MATCH ?
		 ORDER BY favorites_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching favorites: %w", err)
	}
	defer rows.Close()
	return scanArticles(rows)
}

// Remove deletes the article with url.
func (s *SQLiteStore) Remove(ctx context.Context, url string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE url = ?`, url)
	if err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanArticles(rows *sql.Rows) ([]types.Article, error) {
	list := []types.Article{}
	for rows.Next() {
		var (
			a           types.Article
			title       sql.NullString
			authorsJSON sql.NullString
			year        sql.NullInt64
			citations   sql.NullInt64
			abstract    sql.NullString
			journal     sql.NullString
		)
		if err := rows.Scan(&a.URL, &title, &authorsJSON, &year, &citations, &abstract, &journal); err != nil {
			return nil, fmt.Errorf("scanning favorite: %w", err)
		}
		a.Title = title.String
		a.Year = int(year.Int64)
		a.CitationCount = int(citations.Int64)
		a.Abstract = abstract.String
		a.Journal = journal.String
		if authorsJSON.Valid && authorsJSON.String != "" {
			_ = json.Unmarshal([]byte(authorsJSON.String), &a.Authors)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

var (
	_ Repository = (*SQLiteStore)(nil)
	_ Searchable = (*SQLiteStore)(nil)
)
