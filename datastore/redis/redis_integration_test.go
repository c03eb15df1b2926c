//go:build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/storagemodels"
)

func TestRedisStore_Lifecycle(t *testing.T) {
	_ = godotenv.Load()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	store, err := Open[storagemodels.Document](ctx, Config{Addr: addr, Password: os.Getenv("REDIS_PASS"), Prefix: "labelregistry-test:"}, storagemodels.DocumentKey)
	require.NoError(t, err)
	defer store.Close()

	doc := storagemodels.Document{Key: "core.label_registry", Version: 1, Data: storagemodels.Snapshot{
		Labels: []storagemodels.LabelRecord{{LabelID: "work", Name: "Work"}},
	}}
	require.NoError(t, store.Put(ctx, doc))

	got, err := store.GetOne(ctx, doc.Key)
	require.NoError(t, err)
	require.Equal(t, "Work", got.Data.Labels[0].Name)

	require.NoError(t, store.Delete(ctx, doc.Key))
	_, err = store.GetOne(ctx, doc.Key)
	require.True(t, errors.IsNotFound(err))
}
