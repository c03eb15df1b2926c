/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/go-openapi/strfmt"
)

// Document is the versioned envelope every backend persists under a single key.
type Document struct {
	// Key identifies the document, e.g. "core.label_registry".
	Key string `json:"key" yaml:"key"`
	// Version is the major schema version of Data.
	Version int `json:"version" yaml:"version"`
	// MinorVersion is bumped for backwards compatible additions.
	MinorVersion int `json:"minor_version" yaml:"minor_version"`
	// Data is the registry payload.
	Data Snapshot `json:"data" yaml:"data"`
}

// DocumentKey returns the storage key of a document. Backends that need a key
// extractor (file, sqlite, redis, mock) use it as their key function.
func DocumentKey(d Document) string {
	return d.Key
}

// Snapshot is the persisted state of a label registry.
type Snapshot struct {
	Labels []LabelRecord `json:"labels" yaml:"labels"`
	// RetiredIDs lists ids of deleted labels, which are never handed out
	// again. Absent in documents written before minor version 3.
	RetiredIDs []string `json:"retired_ids,omitempty" yaml:"retired_ids,omitempty"`
}

// LabelRecord is the on-disk form of a label. The normalized name is never
// stored; it is recomputed on load.
type LabelRecord struct {
	// LabelID is the stable slug identifier.
	LabelID string `json:"label_id" yaml:"label_id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// Color is optional; nil is persisted as null.
	Color *string `json:"color" yaml:"color"`
	// Description is optional; nil is persisted as null.
	Description *string `json:"description" yaml:"description"`
	// Icon is optional; nil is persisted as null.
	Icon *string `json:"icon" yaml:"icon"`
	// CreatedAt is absent in documents written before minor version 2.
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	// ModifiedAt is absent in documents written before minor version 2.
	// Format: date-time
	ModifiedAt *strfmt.DateTime `json:"modified_at,omitempty" yaml:"modified_at,omitempty"`
}

// NewDateTime converts t to the persisted timestamp form.
func NewDateTime(t time.Time) *strfmt.DateTime {
	dt := strfmt.DateTime(t.UTC())
	return &dt
}

// TimeOrEpoch returns the time held by dt, or the Unix epoch when dt is nil.
func TimeOrEpoch(dt *strfmt.DateTime) time.Time {
	if dt == nil {
		return time.Unix(0, 0).UTC()
	}
	return time.Time(*dt).UTC()
}
