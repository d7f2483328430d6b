package battle

import (
	"sync"

	"github.com/google/uuid"
)

const tableShards = 16

// tableEntry wraps one battle state with its own lock. The manager
// holds the entry lock while mutating state and releases it before any
// network send.
type tableEntry[T any] struct {
	mu    sync.Mutex
	state T
}

type tableShard[T any] struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*tableEntry[T]
}

// table is a sharded map of live battles keyed by battle id. Sharding
// keeps lookups cheap while many battles resolve concurrently.
type table[T any] struct {
	shards [tableShards]tableShard[T]
}

func newTable[T any]() *table[T] {
	t := &table[T]{}
	for i := range t.shards {
		t.shards[i].entries = make(map[uuid.UUID]*tableEntry[T])
	}
	return t
}

func (t *table[T]) shard(id uuid.UUID) *tableShard[T] {
	return &t.shards[int(id[0])%tableShards]
}

// Put registers a battle, replacing any previous entry with the id.
func (t *table[T]) Put(id uuid.UUID, state T) {
	s := t.shard(id)
	s.mu.Lock()
	s.entries[id] = &tableEntry[T]{state: state}
	s.mu.Unlock()
}

// Get returns the entry for a battle id if it exists.
func (t *table[T]) Get(id uuid.UUID) (*tableEntry[T], bool) {
	s := t.shard(id)
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	return entry, ok
}

// Delete removes a battle, returning its entry if it was present.
// Removal is idempotent so concurrent end paths tolerate each other.
func (t *table[T]) Delete(id uuid.UUID) (*tableEntry[T], bool) {
	s := t.shard(id)
	s.mu.Lock()
	entry, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	return entry, ok
}

// Len counts the live battles across all shards.
func (t *table[T]) Len() int {
	total := 0
	for i := range t.shards {
		t.shards[i].mu.RLock()
		total += len(t.shards[i].entries)
		t.shards[i].mu.RUnlock()
	}
	return total
}

// Find returns the first battle whose state matches the predicate. The
// predicate runs under the entry lock.
func (t *table[T]) Find(match func(T) bool) (uuid.UUID, *tableEntry[T], bool) {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		candidates := make(map[uuid.UUID]*tableEntry[T], len(s.entries))
		for id, entry := range s.entries {
			candidates[id] = entry
		}
		s.mu.RUnlock()

		for id, entry := range candidates {
			entry.mu.Lock()
			ok := match(entry.state)
			entry.mu.Unlock()
			if ok {
				return id, entry, true
			}
		}
	}
	return uuid.Nil, nil, false
}
