/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/pubsub"
	"github.com/suparena/labelregistry/storagemodels"
)

// Registry holds all labels. It is safe for concurrent use.
type Registry struct {
	persister Persister
	publisher pubsub.Publisher[Event]
	cleaners  []ReferenceCleaner
	logger    *slog.Logger
	now       func() time.Time
	saveDelay time.Duration

	// lifecycle is held for reading by every mutation, from the lock check to
	// the scheduled save, so Close sees no mutation half done.
	// Lock order: lifecycle before mu.
	lifecycle sync.RWMutex

	// mu guards everything below. Collaborators are never called while it is
	// held, except reference cleaners on delete.
	mu        sync.RWMutex
	labels    map[string]Entry
	nameIndex map[string]string
	// retired keeps ids of deleted labels so they are never handed out again.
	retired map[string]struct{}
	loading bool
	loaded  bool
	closed  bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithPublisher sets the bus mutations are announced on.
func WithPublisher(p pubsub.Publisher[Event]) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// WithReferenceCleaners sets the holders that drop label references on delete.
// They are called in the given order.
func WithReferenceCleaners(cleaners ...ReferenceCleaner) Option {
	return func(r *Registry) {
		r.cleaners = append(r.cleaners, cleaners...)
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithNow sets the time source used for created and modified timestamps.
func WithNow(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithSaveDelay overrides SaveDelay.
func WithSaveDelay(d time.Duration) Option {
	return func(r *Registry) {
		r.saveDelay = d
	}
}

// New creates an empty registry backed by persister. Load must succeed
// before any mutation is accepted.
func New(persister Persister, opts ...Option) *Registry {
	r := &Registry{
		persister: persister,
		logger:    slog.Default(),
		now:       time.Now,
		saveDelay: SaveDelay,
		labels:    make(map[string]Entry),
		nameIndex: make(map[string]string),
		retired:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "label_registry")
	return r
}

// Load reads the persisted labels and rebuilds the map and name index. It may
// be called once; a failed load can be retried.
func (r *Registry) Load(ctx context.Context) error {
	r.lifecycle.RLock()
	defer r.lifecycle.RUnlock()

	r.mu.Lock()
	if r.loaded || r.loading {
		r.mu.Unlock()
		return errors.ErrAlreadyLoaded
	}
	r.loading = true
	r.mu.Unlock()

	snap, err := r.persister.Load(ctx)

	r.mu.Lock()
	r.loading = false
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("load labels: %w", err)
	}

	repaired := false
	if snap != nil {
		repaired = r.restoreLocked(snap)
	}
	r.loaded = true
	count, retired := len(r.labels), len(r.retired)
	r.mu.Unlock()

	r.logger.Info("label registry loaded", "labels", count, "retired", retired, "repaired", repaired)
	if repaired {
		r.scheduleSave()
	}
	return nil
}

// restoreLocked fills the maps from a stored snapshot and reports whether any
// record had to be dropped or renamed. Caller must hold r.mu.
func (r *Registry) restoreLocked(snap *storagemodels.Snapshot) bool {
	repaired := false
	for _, id := range snap.RetiredIDs {
		if id != "" {
			r.retired[id] = struct{}{}
		}
	}

	for _, rec := range snap.Labels {
		if rec.LabelID == "" {
			r.logger.Warn("dropping stored label without id", "name", rec.Name)
			repaired = true
			continue
		}
		if _, dup := r.labels[rec.LabelID]; dup {
			r.logger.Warn("dropping stored label with duplicate id", "label_id", rec.LabelID, "name", rec.Name)
			repaired = true
			continue
		}

		if _, retired := r.retired[rec.LabelID]; retired {
			r.logger.Warn("stored label uses a retired id", "label_id", rec.LabelID, "name", rec.Name)
			delete(r.retired, rec.LabelID)
			repaired = true
		}

		entry := entryFromRecord(rec)
		if entry.NormalizedName == "" {
			entry.Name = entry.ID
			if NormalizeName(entry.Name) == "" {
				entry.Name = "unknown"
			}
			entry.NormalizedName = NormalizeName(entry.Name)
			r.logger.Warn("renamed stored label with blank name", "label_id", entry.ID, "new_name", entry.Name)
			repaired = true
		}
		if _, taken := r.nameIndex[entry.NormalizedName]; taken {
			original := entry.Name
			for n := 2; ; n++ {
				entry.Name = fmt.Sprintf("%s %d", original, n)
				entry.NormalizedName = NormalizeName(entry.Name)
				if _, taken := r.nameIndex[entry.NormalizedName]; !taken {
					break
				}
			}
			r.logger.Warn("renamed stored label with colliding name",
				"label_id", entry.ID, "old_name", original, "new_name", entry.Name)
			repaired = true
		}

		r.labels[entry.ID] = entry
		r.nameIndex[entry.NormalizedName] = entry.ID
	}
	return repaired
}

// Get returns the label with the given id.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.labels[id]
	return e, ok
}

// GetByName returns the label whose name normalizes to the same key as name.
func (r *Registry) GetByName(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getByNormalizedLocked(NormalizeName(name))
}

func (r *Registry) getByNormalizedLocked(normalized string) (Entry, bool) {
	id, ok := r.nameIndex[normalized]
	if !ok {
		return Entry{}, false
	}
	return r.labels[id], true
}

// List returns a snapshot of all labels ordered by id.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []Entry {
	out := make([]Entry, 0, len(r.labels))
	for _, e := range r.labels {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Len returns the number of labels.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.labels)
}

// WithExisting runs fn while holding the registry read lock, after checking
// that every id in labelIDs is a live label. No delete can interleave with
// fn, so references recorded by fn never point at a removed label. fn must
// not call back into the registry.
func (r *Registry) WithExisting(labelIDs []string, fn func() error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range labelIDs {
		if _, ok := r.labels[id]; !ok {
			return errors.NewNotFoundError("label", id)
		}
	}
	return fn()
}

// GetOrCreate returns the label matching name, creating it if none exists.
func (r *Registry) GetOrCreate(name string) (Entry, error) {
	r.lifecycle.RLock()
	defer r.lifecycle.RUnlock()

	r.mu.Lock()
	if err := r.checkLoadedLocked(); err != nil {
		r.mu.Unlock()
		return Entry{}, err
	}
	if e, ok := r.getByNormalizedLocked(NormalizeName(name)); ok {
		r.mu.Unlock()
		return e, nil
	}
	entry, err := r.createLocked(name, nil)
	r.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}

	r.afterCreate(entry)
	return entry, nil
}

// Create adds a new label. It fails with a DuplicateNameError when another
// label already has the same normalized name.
func (r *Registry) Create(name string, opts ...CreateOption) (Entry, error) {
	r.lifecycle.RLock()
	defer r.lifecycle.RUnlock()

	r.mu.Lock()
	if err := r.checkLoadedLocked(); err != nil {
		r.mu.Unlock()
		return Entry{}, err
	}
	entry, err := r.createLocked(name, opts)
	r.mu.Unlock()
	if err != nil {
		return Entry{}, err
	}

	r.afterCreate(entry)
	return entry, nil
}

func (r *Registry) createLocked(name string, opts []CreateOption) (Entry, error) {
	normalized := NormalizeName(name)
	if normalized == "" {
		return Entry{}, errors.NewValidationError("name", "must not be blank")
	}
	if _, taken := r.nameIndex[normalized]; taken {
		return Entry{}, errors.NewDuplicateNameError(name, normalized)
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	entry := Entry{
		Name:           name,
		NormalizedName: normalized,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	entry.ID = r.generateIDLocked(name)

	r.labels[entry.ID] = entry
	r.nameIndex[normalized] = entry.ID
	return entry, nil
}

// generateIDLocked returns slug(name), suffixed with _2, _3, ... until unused.
func (r *Registry) generateIDLocked(name string) string {
	base := Slugify(name)
	suggestion := base
	for tries := 2; r.idInUseLocked(suggestion); tries++ {
		suggestion = fmt.Sprintf("%s_%d", base, tries)
	}
	return suggestion
}

func (r *Registry) idInUseLocked(id string) bool {
	if _, ok := r.labels[id]; ok {
		return true
	}
	_, ok := r.retired[id]
	return ok
}

func (r *Registry) afterCreate(entry Entry) {
	r.logger.Debug("label created", "label_id", entry.ID, "name", entry.Name)
	r.scheduleSave()
	r.publish(ActionCreate, entry.ID)
}

// Update applies the set fields of fields to the label with the given id.
// Fields equal to the current value are ignored; if nothing changes the
// current entry is returned and no save or event happens.
func (r *Registry) Update(id string, fields UpdateFields) (Entry, error) {
	r.lifecycle.RLock()
	defer r.lifecycle.RUnlock()

	r.mu.Lock()
	if err := r.checkLoadedLocked(); err != nil {
		r.mu.Unlock()
		return Entry{}, err
	}

	old, ok := r.labels[id]
	if !ok {
		r.mu.Unlock()
		return Entry{}, errors.NewNotFoundError("label", id)
	}

	updated := old
	changed := false
	for _, f := range []struct {
		field  Field[Optional]
		target *Optional
	}{
		{fields.Color, &updated.Color},
		{fields.Description, &updated.Description},
		{fields.Icon, &updated.Icon},
	} {
		if v, set := f.field.Get(); set && v != *f.target {
			*f.target = v
			changed = true
		}
	}

	if name, set := fields.Name.Get(); set && name != old.Name {
		normalized := NormalizeName(name)
		if normalized == "" {
			r.mu.Unlock()
			return Entry{}, errors.NewValidationError("name", "must not be blank")
		}
		if normalized != old.NormalizedName {
			if _, taken := r.nameIndex[normalized]; taken {
				r.mu.Unlock()
				return Entry{}, errors.NewDuplicateNameError(name, normalized)
			}
		}
		updated.Name = name
		updated.NormalizedName = normalized
		changed = true
	}

	if !changed {
		r.mu.Unlock()
		return old, nil
	}

	updated.ModifiedAt = r.now().UTC().Truncate(time.Millisecond)
	r.labels[id] = updated
	if updated.NormalizedName != old.NormalizedName {
		delete(r.nameIndex, old.NormalizedName)
		r.nameIndex[updated.NormalizedName] = id
	}
	r.mu.Unlock()

	r.logger.Debug("label updated", "label_id", id, "name", updated.Name)
	r.scheduleSave()
	r.publish(ActionUpdate, id)
	return updated, nil
}

// Delete removes the label after every reference cleaner has dropped it.
func (r *Registry) Delete(id string) error {
	r.lifecycle.RLock()
	defer r.lifecycle.RUnlock()

	r.mu.Lock()
	if err := r.checkLoadedLocked(); err != nil {
		r.mu.Unlock()
		return err
	}

	entry, ok := r.labels[id]
	if !ok {
		r.mu.Unlock()
		return errors.NewNotFoundError("label", id)
	}

	for _, c := range r.cleaners {
		c.ClearLabelReference(id)
	}

	delete(r.labels, id)
	delete(r.nameIndex, entry.NormalizedName)
	r.retired[id] = struct{}{}
	r.mu.Unlock()

	r.logger.Debug("label deleted", "label_id", id, "name", entry.Name)
	r.publish(ActionRemove, id)
	r.scheduleSave()
	return nil
}

// Close rejects further mutations with ErrClosed and writes any pending save
// synchronously. Reads keep working.
func (r *Registry) Close(ctx context.Context) error {
	r.lifecycle.Lock()
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.lifecycle.Unlock()

	if err := r.persister.Flush(ctx); err != nil {
		return fmt.Errorf("flush labels: %w", err)
	}
	return nil
}

// Verify checks that the label map and the name index agree.
func (r *Registry) Verify() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.labels) != len(r.nameIndex) {
		return errors.NewInvariantViolationError("%d labels but %d index entries", len(r.labels), len(r.nameIndex))
	}
	for id, e := range r.labels {
		if e.ID != id {
			return errors.NewInvariantViolationError("label stored under %q has id %q", id, e.ID)
		}
		if want := NormalizeName(e.Name); e.NormalizedName != want {
			return errors.NewInvariantViolationError("label %q has normalized name %q, expected %q", id, e.NormalizedName, want)
		}
		if got, ok := r.nameIndex[e.NormalizedName]; !ok || got != id {
			return errors.NewInvariantViolationError("index entry %q points to %q, expected %q", e.NormalizedName, got, id)
		}
		if _, ok := r.retired[id]; ok {
			return errors.NewInvariantViolationError("live label %q reuses a retired id", id)
		}
	}
	return nil
}

func (r *Registry) checkLoadedLocked() error {
	if r.closed {
		return errors.ErrClosed
	}
	if !r.loaded {
		return errors.ErrNotLoaded
	}
	return nil
}

func (r *Registry) scheduleSave() {
	r.persister.DelaySave(r.Snapshot, r.saveDelay)
}

// Snapshot returns the persisted form of all labels, ordered by id, and the
// retired ids. It is the save producer and runs at flush time.
func (r *Registry) Snapshot() storagemodels.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.listLocked()
	snap := storagemodels.Snapshot{Labels: make([]storagemodels.LabelRecord, 0, len(entries))}
	for _, e := range entries {
		snap.Labels = append(snap.Labels, e.toRecord())
	}
	if len(r.retired) > 0 {
		snap.RetiredIDs = slices.Sorted(maps.Keys(r.retired))
	}
	return snap
}

func (r *Registry) publish(action Action, id string) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(EventLabelRegistryUpdated, Event{Action: action, LabelID: id})
}
