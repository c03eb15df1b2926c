/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

// Field is one attribute of an update request: either Unchanged (the zero
// value) or SetTo a new value.
type Field[T comparable] struct {
	value T
	set   bool
}

// SetTo returns a Field that replaces the attribute with v.
func SetTo[T comparable](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Unchanged returns a Field that leaves the attribute alone.
func Unchanged[T comparable]() Field[T] {
	return Field[T]{}
}

// Get returns the new value and whether one was given.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.set
}

// IsSet reports whether the field carries a new value.
func (f Field[T]) IsSet() bool {
	return f.set
}

// UpdateFields lists the attributes Update may change. Omitted fields stay as they are.
type UpdateFields struct {
	Name        Field[string]
	Color       Field[Optional]
	Description Field[Optional]
	Icon        Field[Optional]
}

// CreateOption sets an optional attribute on a new label.
type CreateOption func(*Entry)

// WithColor sets the color of a new label.
func WithColor(color string) CreateOption {
	return func(e *Entry) { e.Color = Some(color) }
}

// WithDescription sets the description of a new label.
func WithDescription(description string) CreateOption {
	return func(e *Entry) { e.Description = Some(description) }
}

// WithIcon sets the icon of a new label.
func WithIcon(icon string) CreateOption {
	return func(e *Entry) { e.Icon = Some(icon) }
}
