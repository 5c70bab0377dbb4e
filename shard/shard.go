package shard

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrPoisoned is raised when a shard is used after a panic left it in an unknown state.
	ErrPoisoned = errors.New("shard: poisoned")

	// ErrReleased is raised when an accessor is used after Release.
	ErrReleased = errors.New("shard: accessor released")
)

/*
Shard is one independently lockable partition of the map.

Each shard:
- Holds the entries whose keys hash to its index
- Has its own RWMutex: many readers or one writer
- Keeps an occupancy hint that lookups read without locking

Operations never touch more than one shard, so there is no lock ordering to get wrong.
*/
type Shard[K comparable, V any] struct {
	index int

	// mu guards store. Readers share it, writers hold it exclusively.
	mu    sync.RWMutex
	store store[K, V]

	// occupancy counts entries appended to store. It only grows, and it is
	// incremented while the write lock is held, so a reader that sees a nonzero
	// value and then takes the lock is guaranteed to see the entry.
	occupancy atomic.Int64

	// poisoned is set when a panic escapes while the write lock is held.
	// Go mutexes do not poison, so the shard tracks it itself and fails closed.
	poisoned atomic.Bool

	onPoison func(index int, cause any)
}

// NewShard creates an empty shard. onPoison may be nil.
func NewShard[K comparable, V any](index int, onPoison func(index int, cause any)) *Shard[K, V] {
	return &Shard[K, V]{
		index:    index,
		onPoison: onPoison,
	}
}

// Index returns the position of the shard in its map.
func (s *Shard[K, V]) Index() int {
	return s.index
}

/*
Occupancy returns the lock-free occupancy hint.

Zero means the shard is definitely empty. Anything else means the caller
must still lock and scan; the hint never says WHICH key is stored.
*/
func (s *Shard[K, V]) Occupancy() int64 {
	return s.occupancy.Load()
}

// Poisoned reports whether the shard has been marked unusable.
func (s *Shard[K, V]) Poisoned() bool {
	return s.poisoned.Load()
}

// Read locks the shard for reading and returns an accessor for key.
// If the key is absent the lock is released before returning.
func (s *Shard[K, V]) Read(key K) (*ReadGuard[K, V], bool) {
	s.rlock()

	held := false
	defer func() {
		if !held {
			s.mu.RUnlock()
		}
	}()

	i := s.store.find(key)
	if i < 0 {
		return nil, false
	}

	held = true
	return &ReadGuard[K, V]{shard: s, index: i}, true
}

// Write locks the shard exclusively and returns an accessor for key.
// If the key is absent the lock is released before returning.
func (s *Shard[K, V]) Write(key K) (*WriteGuard[K, V], bool) {
	s.lock()

	held := false
	defer func() {
		if !held {
			s.mu.Unlock()
		}
	}()
	defer s.poisonOnPanic()

	i := s.store.find(key)
	if i < 0 {
		return nil, false
	}

	held = true
	return &WriteGuard[K, V]{shard: s, index: i}, true
}

// Contains reports whether key is stored, under the read lock.
func (s *Shard[K, V]) Contains(key K) bool {
	s.rlock()
	defer s.mu.RUnlock()

	return s.store.find(key) >= 0
}

/*
Insert stores value under key.

If the key already exists its value is replaced and the displaced value is
returned with true. Otherwise a new entry is appended, the occupancy hint is
bumped, and the zero value is returned with false.
*/
func (s *Shard[K, V]) Insert(key K, value V) (old V, replaced bool) {
	s.lock()
	defer s.mu.Unlock()
	defer s.poisonOnPanic()

	if i := s.store.find(key); i >= 0 {
		e := s.store.at(i)
		old, e.Value = e.Value, value
		return old, true
	}

	s.store.add(key, value)
	s.occupancy.Add(1)
	return old, false
}

// InsertNew appends key/value only if key is absent. It reports whether the entry was added.
func (s *Shard[K, V]) InsertNew(key K, value V) bool {
	s.lock()
	defer s.mu.Unlock()
	defer s.poisonOnPanic()

	if s.store.find(key) >= 0 {
		return false
	}

	s.store.add(key, value)
	s.occupancy.Add(1)
	return true
}

// Len counts the stored entries under the read lock. Unlike Occupancy it is exact.
func (s *Shard[K, V]) Len() int {
	s.rlock()
	defer s.mu.RUnlock()

	return s.store.len()
}

func (s *Shard[K, V]) rlock() {
	s.mu.RLock()
	if s.poisoned.Load() {
		s.mu.RUnlock()
		panic(s.poisonedErr())
	}
}

func (s *Shard[K, V]) lock() {
	s.mu.Lock()
	if s.poisoned.Load() {
		s.mu.Unlock()
		panic(s.poisonedErr())
	}
}

// poisonOnPanic must be deferred directly while the write lock is held.
// It marks the shard poisoned and lets the panic continue.
func (s *Shard[K, V]) poisonOnPanic() {
	r := recover()
	if r == nil {
		return
	}

	s.poison(r)
	panic(r)
}

// poison marks the shard. The callback only runs for the first cause.
func (s *Shard[K, V]) poison(cause any) {
	if !s.poisoned.CompareAndSwap(false, true) {
		return
	}
	if s.onPoison != nil {
		s.onPoison(s.index, cause)
	}
}

func (s *Shard[K, V]) poisonedErr() error {
	return fmt.Errorf("%w: shard %d", ErrPoisoned, s.index)
}
