/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labelregistry

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/suparena/labelregistry/config"
	"github.com/suparena/labelregistry/datastore"
	"github.com/suparena/labelregistry/datastore/ddb"
	"github.com/suparena/labelregistry/datastore/file"
	"github.com/suparena/labelregistry/datastore/redis"
	"github.com/suparena/labelregistry/datastore/sqlite"
	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/storagemodels"
)

// DocumentStore is the backend contract for the registry document.
// Backends that hold connections also implement io.Closer.
type DocumentStore = datastore.DataStore[storagemodels.Document]

// BackendFactory opens a DocumentStore from configuration.
type BackendFactory func(ctx context.Context, cfg config.Config, logger *slog.Logger) (DocumentStore, error)

// Backends is a thread-safe registry of named backend factories.
type Backends struct {
	mu        sync.RWMutex
	factories map[string]BackendFactory
}

// NewBackends creates an empty backend registry.
func NewBackends() *Backends {
	return &Backends{
		factories: make(map[string]BackendFactory),
	}
}

// DefaultBackends returns a registry holding the file, sqlite, dynamodb and
// redis backends.
func DefaultBackends() *Backends {
	b := NewBackends()
	_ = b.Register(config.BackendFile, openFile)
	_ = b.Register(config.BackendSQLite, openSQLite)
	_ = b.Register(config.BackendDynamoDB, openDynamoDB)
	_ = b.Register(config.BackendRedis, openRedis)
	return b
}

// Register stores the factory under the given name.
func (b *Backends) Register(name string, f BackendFactory) error {
	if f == nil {
		return errors.NewValidationError("factory", "must not be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.factories[name]; exists {
		return fmt.Errorf("backend %q already registered", name)
	}
	b.factories[name] = f
	return nil
}

// Replace stores the factory under name, overwriting any previous one.
func (b *Backends) Replace(name string, f BackendFactory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.factories[name] = f
}

// Get retrieves the factory registered under name.
func (b *Backends) Get(name string) (BackendFactory, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	f, exists := b.factories[name]
	if !exists {
		return nil, errors.NewNotFoundError("backend", name)
	}
	return f, nil
}

// Remove deletes the factory registered under name.
func (b *Backends) Remove(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.factories[name]; !exists {
		return errors.NewNotFoundError("backend", name)
	}
	delete(b.factories, name)
	return nil
}

// List returns the registered backend names in sorted order.
func (b *Backends) List() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.factories))
	for name := range b.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open runs the factory selected by cfg.Backend.
func (b *Backends) Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (DocumentStore, error) {
	f, err := b.Get(cfg.Backend)
	if err != nil {
		return nil, err
	}
	store, err := f(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	logger.Debug("backend opened", "backend", cfg.Backend)
	return store, nil
}

func openFile(_ context.Context, cfg config.Config, _ *slog.Logger) (DocumentStore, error) {
	return file.New[storagemodels.Document](cfg.File.Dir, storagemodels.DocumentKey)
}

func openSQLite(_ context.Context, cfg config.Config, _ *slog.Logger) (DocumentStore, error) {
	return sqlite.Open[storagemodels.Document](cfg.SQLite.Path, storagemodels.DocumentKey)
}

func openDynamoDB(ctx context.Context, cfg config.Config, _ *slog.Logger) (DocumentStore, error) {
	return ddb.NewDynamodbDataStore[storagemodels.Document](ctx, ddb.Config{
		Region:    cfg.DynamoDB.Region,
		Table:     cfg.DynamoDB.Table,
		AccessKey: cfg.DynamoDB.AccessKey,
		SecretKey: cfg.DynamoDB.SecretKey,
		Endpoint:  cfg.DynamoDB.Endpoint,
	})
}

func openRedis(ctx context.Context, cfg config.Config, _ *slog.Logger) (DocumentStore, error) {
	return redis.Open[storagemodels.Document](ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	}, storagemodels.DocumentKey)
}
