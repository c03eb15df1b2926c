/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/storagemodels"
)

// DefaultMaxDelay bounds how long repeated DelaySave calls may postpone a write.
const DefaultMaxDelay = 60 * time.Second

const tracerName = "github.com/suparena/labelregistry/datastore"

// Store persists one versioned document on top of a DataStore backend and
// coalesces bursts of save requests into a single delayed write.
type Store struct {
	backend      DataStore[storagemodels.Document]
	key          string
	version      int
	minorVersion int
	clock        Clock
	maxDelay     time.Duration
	logger       *slog.Logger
	tracer       trace.Tracer

	// writeMu serializes writes so an older snapshot never lands after a newer one.
	// Lock order: writeMu before mu.
	writeMu sync.Mutex

	mu           sync.Mutex
	timer        Timer
	generation   uint64
	producer     func() storagemodels.Snapshot
	pendingSince time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for delayed writes. Defaults to RealClock.
func WithClock(clock Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithMaxDelay caps the time between the first unsaved request and its write.
// Zero disables the cap.
func WithMaxDelay(d time.Duration) Option {
	return func(s *Store) {
		s.maxDelay = d
	}
}

// WithMinorVersion sets the minor version written into saved documents.
func WithMinorVersion(minor int) Option {
	return func(s *Store) {
		s.minorVersion = minor
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store that reads and writes the document stored under key.
func NewStore(backend DataStore[storagemodels.Document], key string, version int, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		key:      key,
		version:  version,
		clock:    RealClock{},
		maxDelay: DefaultMaxDelay,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("store_key", key)
	return s
}

// Key returns the document key.
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored snapshot, or nil when nothing has been saved yet.
func (s *Store) Load(ctx context.Context) (*storagemodels.Snapshot, error) {
	ctx, span := s.tracer.Start(ctx, "datastore.Load", trace.WithAttributes(attribute.String("store.key", s.key)))
	defer span.End()

	doc, err := s.backend.GetOne(ctx, s.key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	if doc == nil {
		return nil, nil
	}
	if doc.Version > s.version {
		err := errors.NewVersionError(s.key, doc.Version, s.version)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("store.labels", len(doc.Data.Labels)))
	return &doc.Data, nil
}

// DelaySave schedules a write of whatever producer returns when the delay
// elapses. A later call replaces the producer and restarts the delay, bounded
// by the configured max delay.
func (s *Store) DelaySave(producer func() storagemodels.Snapshot, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.producer = producer
	if s.pendingSince.IsZero() {
		s.pendingSince = now
	}
	if s.maxDelay > 0 {
		if remaining := s.pendingSince.Add(s.maxDelay).Sub(now); remaining < delay {
			delay = max(remaining, 0)
		}
	}

	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.timer = s.clock.AfterFunc(delay, func() { s.fire(gen) })
}

// Pending reports whether a write is scheduled or left over from a failed save.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.producer != nil
}

// Flush cancels the pending timer and writes immediately. It waits for any
// in-flight delayed write, so after it returns every accepted save request
// has reached the backend or produced an error.
func (s *Store) Flush(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	producer := s.takePendingLocked()
	s.mu.Unlock()

	if producer == nil {
		return nil
	}
	return s.writeLocked(ctx, producer)
}

func (s *Store) fire(gen uint64) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if gen != s.generation {
		// superseded by a later DelaySave or a Flush
		s.mu.Unlock()
		return
	}
	producer := s.takePendingLocked()
	s.mu.Unlock()

	if producer == nil {
		return
	}
	if err := s.writeLocked(context.Background(), producer); err != nil {
		s.logger.Error("delayed save failed", "error", err)
	}
}

// takePendingLocked clears the schedule and returns the producer to run.
// Caller must hold s.mu.
func (s *Store) takePendingLocked() func() storagemodels.Snapshot {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	producer := s.producer
	s.producer = nil
	s.pendingSince = time.Time{}
	return producer
}

// writeLocked runs producer and stores the result. Caller must hold s.writeMu.
func (s *Store) writeLocked(ctx context.Context, producer func() storagemodels.Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "datastore.Save", trace.WithAttributes(attribute.String("store.key", s.key)))
	defer span.End()

	doc := storagemodels.Document{
		Key:          s.key,
		Version:      s.version,
		MinorVersion: s.minorVersion,
		Data:         producer(),
	}
	span.SetAttributes(attribute.Int("store.labels", len(doc.Data.Labels)))

	if err := s.backend.Put(ctx, doc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		// keep the request so the next DelaySave or Flush retries it
		s.mu.Lock()
		if s.producer == nil {
			s.producer = producer
		}
		s.mu.Unlock()
		return fmt.Errorf("save %s: %w", s.key, err)
	}

	s.logger.Debug("document saved", "labels", len(doc.Data.Labels))
	return nil
}
