// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/pdiddy/researchflow/pkg/types"
)

var bucketName = []byte("favorites")

// BoltStore keeps the favorites list as one JSON array under StorageKey in
// a bbolt bucket. Each mutation is a read-modify-write inside a single
// update transaction.
type BoltStore struct {
	db     *bolt.DB
	logger *zap.Logger
}

// OpenBolt opens or creates the bbolt file at path.
func OpenBolt(path string, logger *zap.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating favorites directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening favorites database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating favorites bucket: %w", err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

// Exists reports whether an article with url is saved.
func (s *BoltStore) Exists(_ context.Context, url string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		list, err := readList(tx.Bucket(bucketName))
		if err != nil {
			return err
		}
		found = indexOf(list, url) >= 0
		return nil
	})
	return found, err
}

// Add appends article unless its URL is already saved.
func (s *BoltStore) Add(_ context.Context, article types.Article) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		list, err := readList(b)
		if err != nil {
			return err
		}
		list, err = appendUnique(list, article)
		if err != nil {
			return err
		}
		return writeList(b, list)
	})
	if err == nil {
		s.logger.Debug("favorite saved", zap.String("url", article.URL))
	}
	return err
}

// List returns saved articles in the order they were added.
func (s *BoltStore) List(_ context.Context) ([]types.Article, error) {
	var list []types.Article
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		list, err = readList(tx.Bucket(bucketName))
		return err
	})
	return list, err
}

// Remove deletes the article with url.
func (s *BoltStore) Remove(_ context.Context, url string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		list, err := readList(b)
		if err != nil {
			return err
		}
		list, err = removeURL(list, url)
		if err != nil {
			return err
		}
		return writeList(b, list)
	})
}

// Close closes the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func readList(b *bolt.Bucket) ([]types.Article, error) {
	data := b.Get([]byte(StorageKey))
	if data == nil {
		return []types.Article{}, nil
	}
	var list []types.Article
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", StorageKey, err)
	}
	return list, nil
}

func writeList(b *bolt.Bucket, list []types.Article) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", StorageKey, err)
	}
	return b.Put([]byte(StorageKey), data)
}

var _ Repository = (*BoltStore)(nil)
