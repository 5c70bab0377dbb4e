package shard

import "github.com/krisalay/fixedmap/types"

/*
This file defines how entries are stored inside a shard.

A shard holds few entries when the shard count is sized for the expected
number of keys, so a plain slice with a linear scan beats a nested map:
no per-entry allocation, no second hash, and the scan stays in cache.

Keys are compared with ==, never by hash. The store is NOT safe for
concurrent use; the owning Shard's lock protects it.
*/
type store[K comparable, V any] struct {
	entries []types.Entry[K, V]
}

// find returns the position of key, or -1 if the key is not stored.
func (s *store[K, V]) find(key K) int {
	for i := range s.entries {
		if s.entries[i].Key == key {
			return i
		}
	}
	return -1
}

// at returns the entry at position i. Positions never move because entries are never removed.
func (s *store[K, V]) at(i int) *types.Entry[K, V] {
	return &s.entries[i]
}

// add appends a new entry. The caller has already checked the key is absent.
func (s *store[K, V]) add(key K, value V) {
	s.entries = append(s.entries, types.Entry[K, V]{Key: key, Value: value})
}

func (s *store[K, V]) len() int {
	return len(s.entries)
}
