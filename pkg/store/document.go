package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Document is a whole collection keyed by string, held in memory and
// rewritten to the backend after every change.
type Document[T any] struct {
	backend Backend
	name    string

	mu     sync.Mutex
	loaded bool
	items  map[string]T
}

// NewDocument creates a lazily loaded document bound to a backend.
func NewDocument[T any](backend Backend, name string) *Document[T] {
	return &Document[T]{
		backend: backend,
		name:    name,
	}
}

// Name returns the collection name.
func (d *Document[T]) Name() string {
	return d.name
}

// load populates items on first use. Read failures and corrupt bodies leave
// the collection empty.
func (d *Document[T]) load(ctx context.Context) {
	if d.loaded {
		return
	}
	d.loaded = true
	d.items = make(map[string]T)

	data, err := d.backend.Load(ctx, d.name)
	if err != nil {
		logrus.Errorf("failed to load %s, starting empty: %v", d.name, err)
		return
	}
	if len(data) == 0 {
		return
	}

	if err := json.Unmarshal(data, &d.items); err != nil {
		logrus.Errorf("failed to decode %s, starting empty: %v", d.name, err)
		d.items = make(map[string]T)
	}
}

// Read calls fn with the current collection. fn must not retain or modify the map.
func (d *Document[T]) Read(ctx context.Context, fn func(items map[string]T)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.load(ctx)
	fn(d.items)
}

// Mutate calls fn with the collection and persists it when fn reports a change.
// The in-memory state keeps fn's changes even if the save fails.
func (d *Document[T]) Mutate(ctx context.Context, fn func(items map[string]T) (bool, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.load(ctx)
	changed, err := fn(d.items)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	data, err := json.MarshalIndent(d.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", d.name, err)
	}

	if err := d.backend.Save(ctx, d.name, data); err != nil {
		logrus.Errorf("failed to save %s: %v", d.name, err)
		return err
	}
	return nil
}
