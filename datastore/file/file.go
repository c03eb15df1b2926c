/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package file stores each entity as a JSON file in a directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/suparena/labelregistry/datastore"
	"github.com/suparena/labelregistry/errors"
)

// DataStore implements datastore.DataStore[T] on top of a directory.
// Each key maps to "<dir>/<key>.json". Writes are atomic.
type DataStore[T any] struct {
	dir   string
	keyFn datastore.KeyFunc[T]
}

// New creates a file-backed store rooted at dir. The directory is created on first write.
func New[T any](dir string, keyFn datastore.KeyFunc[T]) (*DataStore[T], error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.NewValidationError("dir", "storage directory is required")
	}
	if keyFn == nil {
		return nil, errors.NewValidationError("keyFn", "key function is required")
	}
	return &DataStore[T]{dir: filepath.Clean(dir), keyFn: keyFn}, nil
}

// Dir returns the storage directory.
func (d *DataStore[T]) Dir() string {
	return d.dir
}

func (d *DataStore[T]) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", errors.NewValidationError("key", fmt.Sprintf("invalid storage key %q", key))
	}
	return filepath.Join(d.dir, key+".json"), nil
}

// GetOne reads and decodes the file stored under key.
func (d *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var zero T
			return nil, errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	result := new(T)
	if err := json.Unmarshal(data, result); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return result, nil
}

// Put encodes entity and replaces the file for its key.
func (d *DataStore[T]) Put(ctx context.Context, entity T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(d.keyFn(entity))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entity: %w", err)
	}

	// Write atomically (write to temp, then rename)
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	temp, err := os.CreateTemp(d.dir, "."+filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Sync(); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Delete removes the file for key. Deleting a missing key is not an error.
func (d *DataStore[T]) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
