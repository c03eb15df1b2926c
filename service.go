/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labelregistry

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/suparena/labelregistry/config"
	"github.com/suparena/labelregistry/datastore"
	"github.com/suparena/labelregistry/labels"
	"github.com/suparena/labelregistry/pubsub"
	"github.com/suparena/labelregistry/references"
)

// Service wires the label registry to its storage, event bus and the two
// reference indexes. Create it with Open and release it with Close.
type Service struct {
	Labels   *labels.Registry
	Devices  *references.Index
	Entities *references.Index
	Events   *pubsub.Broker[labels.Event]

	store   *datastore.Store
	backend DocumentStore
	logger  *slog.Logger
}

type serviceOptions struct {
	backends *Backends
	clock    datastore.Clock
}

// ServiceOption customizes Open.
type ServiceOption func(*serviceOptions)

// WithBackends replaces DefaultBackends.
func WithBackends(b *Backends) ServiceOption {
	return func(o *serviceOptions) {
		o.backends = b
	}
}

// WithClock sets the clock driving delayed saves.
func WithClock(c datastore.Clock) ServiceOption {
	return func(o *serviceOptions) {
		o.clock = c
	}
}

// Open opens the configured backend, loads the registry and returns a ready Service.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	o := serviceOptions{backends: DefaultBackends(), clock: datastore.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := o.backends.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store := datastore.NewStore(backend, labels.StorageKey, labels.StorageVersion,
		datastore.WithMinorVersion(labels.StorageMinorVersion),
		datastore.WithMaxDelay(cfg.MaxSaveDelay),
		datastore.WithClock(o.clock),
		datastore.WithLogger(logger.With("backend", cfg.Backend)),
	)

	s := &Service{
		Events:  pubsub.NewBroker[labels.Event](),
		store:   store,
		backend: backend,
		logger:  logger,
	}

	// the registry needs the indexes as cleaners, so bind it lazily
	guard := references.LabelGuardFunc(func(ids []string, fn func() error) error {
		return s.Labels.WithExisting(ids, fn)
	})
	s.Devices = references.NewIndex("devices", guard)
	s.Entities = references.NewIndex("entities", guard)

	regOpts := []labels.Option{
		labels.WithPublisher(s.Events),
		labels.WithReferenceCleaners(s.Devices, s.Entities),
		labels.WithLogger(logger),
	}
	if cfg.SaveDelay > 0 {
		regOpts = append(regOpts, labels.WithSaveDelay(cfg.SaveDelay))
	}
	s.Labels = labels.New(store, regOpts...)

	if err := s.Labels.Load(ctx); err != nil {
		s.Events.Close()
		closeBackend(backend)
		return nil, err
	}
	return s, nil
}

// Close flushes pending changes and releases the backend and event bus.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if err := s.Labels.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if c, ok := s.backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backend: %w", err))
		}
	}
	s.Events.Close()
	return stderrors.Join(errs...)
}

// Pending reports whether unsaved changes are waiting for the save delay.
func (s *Service) Pending() bool {
	return s.store.Pending()
}

func closeBackend(backend DocumentStore) {
	if c, ok := backend.(io.Closer); ok {
		_ = c.Close()
	}
}
