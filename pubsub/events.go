/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pubsub

import (
	"context"
	"time"
)

// EventType names a topic on the bus.
type EventType string

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc[T any] func(eventType EventType, payload T)

// Publish calls f.
func (f PublisherFunc[T]) Publish(eventType EventType, payload T) {
	f(eventType, payload)
}
