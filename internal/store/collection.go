package store

import (
	"slices"
	"sync"
)

// collection is one canonical list. Writers build a new slice under mu and
// publish it, so a snapshot handed to a reader is never written again.
type collection[T any] struct {
	name string
	id   func(T) string

	mu      sync.RWMutex
	items   []T
	version uint64
}

func newCollection[T any](name string, id func(T) string, seed []T) *collection[T] {
	c := &collection[T]{name: name, id: id}
	c.publish(slices.Clone(seed))
	c.version = 0
	return c
}

func (c *collection[T]) snapshot() ([]T, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.items, c.version
}

func (c *collection[T]) find(id string) (T, bool) {
	items, _ := c.snapshot()
	for _, v := range items {
		if c.id(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) publish(next []T) uint64 {
	if next == nil {
		next = []T{}
	}
	c.items = slices.Clip(next)
	c.version++
	return c.version
}

func (c *collection[T]) replace(items []T) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publish(slices.Clone(items))
}

// append adds v, or replaces the element already holding v's id so ids stay
// unique within the collection.
func (c *collection[T]) append(v T) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(v)
	next := make([]T, len(c.items), len(c.items)+1)
	copy(next, c.items)
	if i := slices.IndexFunc(next, func(e T) bool { return c.id(e) == id }); i >= 0 {
		next[i] = v
		return c.publish(next)
	}
	return c.publish(append(next, v))
}

// update swaps the element sharing v's id. Unknown ids leave the contents as
// they were but still publish a new snapshot.
func (c *collection[T]) update(v T) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id(v)
	next := slices.Clone(c.items)
	for i := range next {
		if c.id(next[i]) == id {
			next[i] = v
		}
	}
	return c.publish(next)
}

func (c *collection[T]) remove(id string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := slices.DeleteFunc(slices.Clone(c.items), func(v T) bool { return c.id(v) == id })
	return c.publish(next)
}
