/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlite provides a SQLite-backed DataStore using the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suparena/labelregistry/datastore"
	"github.com/suparena/labelregistry/errors"
)

const schema = `CREATE TABLE IF NOT EXISTS documents (
	key        TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// DataStore implements datastore.DataStore[T] with one row per key.
// Entities are stored as JSON in the body column.
type DataStore[T any] struct {
	sqlDB *sql.DB
	keyFn datastore.KeyFunc[T]
}

// Open opens (or creates) the database at path and ensures the documents table exists.
func Open[T any](path string, keyFn datastore.KeyFunc[T]) (*DataStore[T], error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewValidationError("path", "storage path is required")
	}
	if keyFn == nil {
		return nil, errors.NewValidationError("keyFn", "key function is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &DataStore[T]{sqlDB: sqlDB, keyFn: keyFn}, nil
}

// Close closes the SQLite handle.
func (d *DataStore[T]) Close() error {
	if d == nil || d.sqlDB == nil {
		return nil
	}
	return d.sqlDB.Close()
}

// GetOne loads the row for key.
func (d *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	var body string
	err := d.sqlDB.QueryRowContext(ctx, `SELECT body FROM documents WHERE key = ?`, key).Scan(&body)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			var zero T
			return nil, errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
		}
		return nil, fmt.Errorf("select %q: %w", key, err)
	}

	result := new(T)
	if err := json.Unmarshal([]byte(body), result); err != nil {
		return nil, fmt.Errorf("decode %q: %w", key, err)
	}
	return result, nil
}

// Put inserts or replaces the row for the entity's key.
func (d *DataStore[T]) Put(ctx context.Context, entity T) error {
	key := d.keyFn(entity)
	if key == "" {
		return errors.NewValidationError("key", "entity has an empty storage key")
	}

	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	_, err = d.sqlDB.ExecContext(ctx,
		`INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		key, string(body), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert %q: %w", key, err)
	}
	return nil
}

// Delete removes the row for key. Deleting a missing key is not an error.
func (d *DataStore[T]) Delete(ctx context.Context, key string) error {
	if _, err := d.sqlDB.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
