/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

import (
	"context"
	"sync"
	"time"

	"github.com/suparena/labelregistry/pubsub"
	"github.com/suparena/labelregistry/storagemodels"
)

// memoryPersister records save requests and writes them only on Flush.
type memoryPersister struct {
	mu         sync.Mutex
	stored     *storagemodels.Snapshot
	loadErr    error
	producer   func() storagemodels.Snapshot
	delays     []time.Duration
	flushCount int
}

func (p *memoryPersister) Load(context.Context) (*storagemodels.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	return p.stored, nil
}

func (p *memoryPersister) DelaySave(producer func() storagemodels.Snapshot, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.producer = producer
	p.delays = append(p.delays, delay)
}

func (p *memoryPersister) Flush(context.Context) error {
	p.mu.Lock()
	producer := p.producer
	p.producer = nil
	p.mu.Unlock()

	if producer == nil {
		return nil
	}
	snap := producer()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stored = &snap
	p.flushCount++
	return nil
}

func (p *memoryPersister) saveRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.delays)
}

type eventRecorder struct {
	mu     sync.Mutex
	topics []pubsub.EventType
	events []Event
}

func (r *eventRecorder) Publish(topic pubsub.EventType, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.events = append(r.events, ev)
}

func (r *eventRecorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

type cleanerRecorder struct {
	name  string
	calls *[]string
}

func (c cleanerRecorder) ClearLabelReference(id string) {
	*c.calls = append(*c.calls, c.name+":"+id)
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type testRegistry struct {
	*Registry
	persister *memoryPersister
	events    *eventRecorder
	cleanups  *[]string
}

func newTestRegistry(stored *storagemodels.Snapshot) *testRegistry {
	persister := &memoryPersister{stored: stored}
	events := &eventRecorder{}
	cleanups := &[]string{}
	now := fixedNow
	reg := New(persister,
		WithPublisher(events),
		WithReferenceCleaners(
			cleanerRecorder{name: "devices", calls: cleanups},
			cleanerRecorder{name: "entities", calls: cleanups},
		),
		WithNow(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
	)
	return &testRegistry{Registry: reg, persister: persister, events: events, cleanups: cleanups}
}
