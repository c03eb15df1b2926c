/*
Package labelregistry provides a label registry service: user-defined labels
with unique slug ids and unique normalized names, persisted through a
pluggable storage backend with debounced writes.

The service assembles these packages:
  - labels: the registry core (create, update, delete, lookup by id or name)
  - datastore: the delayed-save document store over a DataStore backend
  - datastore/file, datastore/sqlite, datastore/ddb, datastore/redis: backends
  - pubsub: the event bus mutations are published on
  - references: per-item label assignments cleared when a label is deleted
  - config, logging: settings and structured logs

Basic Usage:

	cfg, err := config.Load("")
	if err != nil { ... }

	svc, err := labelregistry.Open(ctx, cfg, logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
	if err != nil { ... }
	defer svc.Close(ctx)

	events := svc.Events.Subscribe(ctx)

	work, err := svc.Labels.Create("Work", labels.WithColor("indigo"))
	_ = svc.Devices.Assign("laptop", work.ID)

	// removes "work" from the laptop, publishes {remove work}
	err = svc.Labels.Delete(work.ID)

Backends are chosen by name through a Backends registry. DefaultBackends
knows "file", "sqlite", "dynamodb" and "redis"; custom factories can be
registered and passed with WithBackends.

Changes are written SaveDelay after the last mutation, or at the latest after
the configured max delay. Close flushes synchronously; changes made after the
last successful write are lost if the process dies before that.
*/
package labelregistry
