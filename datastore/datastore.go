/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
)

// DataStore is the key-value contract every storage backend implements.
// GetOne returns an error matching errors.ErrNotFound when key is absent.
type DataStore[T any] interface {
	GetOne(ctx context.Context, key string) (*T, error)

	Put(ctx context.Context, entity T) error

	Delete(ctx context.Context, key string) error
}

// KeyFunc extracts the storage key from an entity. Backends without an index
// map (file, sqlite, redis, mock) use it on Put.
type KeyFunc[T any] func(entity T) string
