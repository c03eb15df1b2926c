/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package references tracks which labels are attached to which items, e.g.
// devices or entities, and drops those references when a label is deleted.
package references

import (
	"slices"
	"sync"

	"github.com/suparena/labelregistry/errors"
)

// LabelGuard runs fn only if every id in labelIDs is a live label, and keeps
// those labels from being deleted until fn returns. labels.Registry
// implements it. It returns a NotFoundError for the first unknown id.
type LabelGuard interface {
	WithExisting(labelIDs []string, fn func() error) error
}

// LabelGuardFunc adapts a function to LabelGuard.
type LabelGuardFunc func(labelIDs []string, fn func() error) error

// WithExisting calls f.
func (f LabelGuardFunc) WithExisting(labelIDs []string, fn func() error) error {
	return f(labelIDs, fn)
}

// Index maps item ids to the set of label ids attached to them. It is safe
// for concurrent use and implements labels.ReferenceCleaner.
//
// Lock order: the guard's lock before the index lock. Label deletion clears
// references while holding the registry lock, so Assign enters the index only
// from inside the guard.
type Index struct {
	name  string
	guard LabelGuard

	mu    sync.RWMutex
	items map[string]map[string]struct{}
}

// NewIndex creates an empty index. name is used in error messages ("devices",
// "entities"). guard may be nil to accept any label id.
func NewIndex(name string, guard LabelGuard) *Index {
	return &Index{
		name:  name,
		guard: guard,
		items: make(map[string]map[string]struct{}),
	}
}

// Name returns the index name.
func (x *Index) Name() string {
	return x.name
}

// Assign attaches labelIDs to itemID. Already attached labels are ignored.
func (x *Index) Assign(itemID string, labelIDs ...string) error {
	if itemID == "" {
		return errors.NewValidationError("item_id", "must not be empty")
	}
	if x.guard == nil {
		return x.insert(itemID, labelIDs)
	}
	return x.guard.WithExisting(labelIDs, func() error {
		return x.insert(itemID, labelIDs)
	})
}

func (x *Index) insert(itemID string, labelIDs []string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	set, ok := x.items[itemID]
	if !ok {
		set = make(map[string]struct{}, len(labelIDs))
		x.items[itemID] = set
	}
	for _, id := range labelIDs {
		set[id] = struct{}{}
	}
	return nil
}

// Unassign detaches labelID from itemID.
func (x *Index) Unassign(itemID, labelID string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	set, ok := x.items[itemID]
	if !ok {
		return
	}
	delete(set, labelID)
	if len(set) == 0 {
		delete(x.items, itemID)
	}
}

// RemoveItem forgets itemID and all its labels.
func (x *Index) RemoveItem(itemID string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.items, itemID)
}

// Labels returns the sorted label ids attached to itemID.
func (x *Index) Labels(itemID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return sortedKeys(x.items[itemID])
}

// ItemsWithLabel returns the sorted item ids that carry labelID.
func (x *Index) ItemsWithLabel(labelID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []string
	for item, set := range x.items {
		if _, ok := set[labelID]; ok {
			out = append(out, item)
		}
	}
	slices.Sort(out)
	return out
}

// ClearLabelReference removes labelID from every item. It is idempotent.
func (x *Index) ClearLabelReference(labelID string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for item, set := range x.items {
		if _, ok := set[labelID]; !ok {
			continue
		}
		delete(set, labelID)
		if len(set) == 0 {
			delete(x.items, item)
		}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
