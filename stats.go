package fixedmap

// ShardStats describes one shard at the moment it was inspected.
type ShardStats struct {
	Index int

	// Entries is counted under the shard's read lock.
	Entries int

	// Hint is the occupancy hint read just before locking.
	Hint int64
}

// ShardCount returns the number of shards fixed at construction.
func (m *ShardedMap[K, V]) ShardCount() int {
	return len(m.shards)
}

// ShardIndex returns the index of the shard that owns key.
func (m *ShardedMap[K, V]) ShardIndex(key K) int {
	return m.selector.Index(key, len(m.shards))
}

/*
Stats inspects every shard, one at a time.
Only one shard is locked at any moment, so the result is not a consistent
snapshot of the whole map when writers are running.
*/
func (m *ShardedMap[K, V]) Stats() []ShardStats {
	stats := make([]ShardStats, len(m.shards))
	for i, sh := range m.shards {
		stats[i] = ShardStats{
			Index:   i,
			Hint:    sh.Occupancy(),
			Entries: sh.Len(),
		}
	}
	return stats
}

// Occupancy returns every shard's occupancy hint without locking. Use it for monitoring only.
func (m *ShardedMap[K, V]) Occupancy() []int64 {
	hints := make([]int64, len(m.shards))
	for i, sh := range m.shards {
		hints[i] = sh.Occupancy()
	}
	return hints
}
