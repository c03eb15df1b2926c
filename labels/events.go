/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

import (
	"context"
	"time"

	"github.com/suparena/labelregistry/pubsub"
	"github.com/suparena/labelregistry/storagemodels"
)

const (
	// StorageKey is the document key the registry persists under.
	StorageKey = "core.label_registry"
	// StorageVersion is the major version of the persisted document.
	StorageVersion = 1
	// StorageMinorVersion 2 added created_at and modified_at, 3 added retired_ids.
	StorageMinorVersion = 3
	// SaveDelay is how long a save request waits for further mutations.
	SaveDelay = 10 * time.Second
)

// EventLabelRegistryUpdated is the topic every mutation is published on.
const EventLabelRegistryUpdated pubsub.EventType = "label_registry_updated"

// Action describes what happened to a label.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Event is the payload published on EventLabelRegistryUpdated.
type Event struct {
	Action  Action `json:"action"`
	LabelID string `json:"label_id"`
}

// Persister loads the registry snapshot and writes it back with coalescing.
// datastore.Store implements it.
type Persister interface {
	Load(ctx context.Context) (*storagemodels.Snapshot, error)
	// DelaySave schedules a write of producer's result after delay. Later calls
	// replace the pending producer and restart the delay.
	DelaySave(producer func() storagemodels.Snapshot, delay time.Duration)
	// Flush writes any pending save immediately.
	Flush(ctx context.Context) error
}

// ReferenceCleaner holds references to labels and drops them when a label is deleted.
// Implementations must not call back into the registry.
type ReferenceCleaner interface {
	ClearLabelReference(labelID string)
}

// ReferenceCleanerFunc adapts a function to ReferenceCleaner.
type ReferenceCleanerFunc func(labelID string)

// ClearLabelReference calls f.
func (f ReferenceCleanerFunc) ClearLabelReference(labelID string) {
	f(labelID)
}
