/*
Package datastore defines the persistence contract used by the label registry
and the debounced Store built on top of it.

The backend interface is DataStore[T], a minimal generic key-value contract:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, entity T) error
	    Delete(ctx context.Context, key string) error
	}

Implementations:
  - ddb: DynamoDB, keys built from index map templates
  - file: one JSON file per key, written atomically
  - sqlite: a documents table in a SQLite database
  - redis: one string value per key
  - mock: in-memory implementation for testing

Store wraps a DataStore[storagemodels.Document] and adds versioning plus
delayed, coalesced writes:

	store := datastore.NewStore(backend, "core.label_registry", 1)
	snap, err := store.Load(ctx)
	store.DelaySave(func() storagemodels.Snapshot { return current }, 10*time.Second)
	err = store.Flush(ctx) // on shutdown
*/
package datastore
