package shard

import (
	"github.com/dolthub/maphash"
	"github.com/segmentio/fasthash/fnv1a"
	"github.com/zeebo/xxh3"
)

/*
This file decides WHICH shard a key belongs to.
The shard count never changes, so the only requirement is that a key always maps
to the same index for the lifetime of the map, and that indexes are spread evenly.
*/

/*
Selector is the interface that maps a key to a shard index in [0, n).
Index must be a pure function of the key: two equal keys always get the same index.
*/
type Selector[K comparable] interface {
	Index(key K, n int) int
}

/*
HashSelector is the default selector. It works for any comparable key
(integers, strings, structs of comparable fields) using a generic 64-bit hasher.

The hasher is seeded once when the selector is created, so indexes are stable
for the selector's lifetime but differ between processes.
*/
type HashSelector[K comparable] struct {
	hasher maphash.Hasher[K]
}

func NewHashSelector[K comparable]() *HashSelector[K] {
	return &HashSelector[K]{hasher: maphash.NewHasher[K]()}
}

func (s *HashSelector[K]) Index(key K, n int) int {
	return reduce(s.hasher.Hash(key), n)
}

// XXH3Selector hashes string keys with XXH3. Unseeded, so indexes are stable across processes.
type XXH3Selector[K ~string] struct{}

func (XXH3Selector[K]) Index(key K, n int) int {
	return reduce(xxh3.HashString(string(key)), n)
}

// FNVSelector hashes string keys with 64-bit FNV-1a.
// FNV-1a mixes poorly into its low bits, so avoid it with power-of-two shard counts.
type FNVSelector[K ~string] struct{}

func (FNVSelector[K]) Index(key K, n int) int {
	return reduce(fnv1a.HashString64(string(key)), n)
}

// reduce maps a 64-bit hash onto [0, n). n is always positive here.
func reduce(h uint64, n int) int {
	return int(h % uint64(n))
}
