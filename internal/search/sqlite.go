package search

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// SQLiteIndex backs each named index with a sqlite table of (id, doc) rows.
// Upserts are idempotent by identifier, which is what makes at-least-once
// synchronization safe for this consumer.
type SQLiteIndex struct {
	db *sql.DB
}

var indexNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func NewSQLiteIndex(path string) (*SQLiteIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("search.NewSQLiteIndex: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("search.NewSQLiteIndex: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

func checkIndexName(name string) error {
	if !indexNameRe.MatchString(name) {
		return fmt.Errorf("search: invalid index name %q", name)
	}
	return nil
}

func (s *SQLiteIndex) CreateIndex(ctx context.Context, name string) error {
	if err := checkIndexName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, doc TEXT NOT NULL)", name))
	if err != nil {
		return fmt.Errorf("search.SQLiteIndex.CreateIndex: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) DeleteIndex(ctx context.Context, name string) error {
	if err := checkIndexName(name); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", name))
	if err != nil {
		return fmt.Errorf("search.SQLiteIndex.DeleteIndex: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Upsert(ctx context.Context, name, id string, doc any) error {
	if err := checkIndexName(name); err != nil {
		return err
	}
	data, err := marshalProjection(doc)
	if err != nil {
		return fmt.Errorf("search.SQLiteIndex.Upsert: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, doc) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET doc = excluded.doc", name)
	if _, err := s.db.ExecContext(ctx, query, id, data); err != nil {
		return fmt.Errorf("search.SQLiteIndex.Upsert: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) BulkUpsert(ctx context.Context, name string, docs []Document) error {
	if err := checkIndexName(name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("search.SQLiteIndex.BulkUpsert: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (id, doc) VALUES (?, ?) ON CONFLICT (id) DO UPDATE SET doc = excluded.doc", name)
	for _, d := range docs {
		data, err := marshalProjection(d.Doc)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("search.SQLiteIndex.BulkUpsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, d.Id, data); err != nil {
			tx.Rollback()
			return fmt.Errorf("search.SQLiteIndex.BulkUpsert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("search.SQLiteIndex.BulkUpsert: commit: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
