package types

// Entry is one stored key/value pair.
// Entries are owned by exactly one shard and are never removed.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}
