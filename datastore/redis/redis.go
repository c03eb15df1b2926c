/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package redis stores entities as JSON strings in Redis.
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/suparena/labelregistry/datastore"
	"github.com/suparena/labelregistry/errors"
)

// DefaultPrefix namespaces keys written by this package.
const DefaultPrefix = "labelregistry:"

// Config holds the connection settings for a Redis server.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// DataStore implements datastore.DataStore[T] on top of Redis GET/SET/DEL.
type DataStore[T any] struct {
	client goredis.UniversalClient
	prefix string
	keyFn  datastore.KeyFunc[T]
}

// NewClient creates a Redis client from cfg and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.NewValidationError("addr", "redis address is required")
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Open connects to Redis and returns a store using cfg.Prefix (or DefaultPrefix).
func Open[T any](ctx context.Context, cfg Config, keyFn datastore.KeyFunc[T]) (*DataStore[T], error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient[T](client, cfg.Prefix, keyFn), nil
}

// NewWithClient wraps an existing client. An empty prefix selects DefaultPrefix.
func NewWithClient[T any](client goredis.UniversalClient, prefix string, keyFn datastore.KeyFunc[T]) *DataStore[T] {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &DataStore[T]{client: client, prefix: prefix, keyFn: keyFn}
}

func (d *DataStore[T]) redisKey(key string) string {
	return d.prefix + key
}

// GetOne fetches and decodes the value stored under key.
func (d *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	raw, err := d.client.Get(ctx, d.redisKey(key)).Bytes()
	if err != nil {
		if stderrors.Is(err, goredis.Nil) {
			var zero T
			return nil, errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
		}
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}

	result := new(T)
	if err := json.Unmarshal(raw, result); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return result, nil
}

// Put encodes entity and stores it without expiry.
func (d *DataStore[T]) Put(ctx context.Context, entity T) error {
	key := d.keyFn(entity)
	if key == "" {
		return errors.NewValidationError("key", "entity has an empty storage key")
	}

	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := d.client.Set(ctx, d.redisKey(key), body, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DataStore[T]) Delete(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, d.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (d *DataStore[T]) Close() error {
	return d.client.Close()
}
