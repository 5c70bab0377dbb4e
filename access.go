package fixedmap

// View calls fn with the value stored under key while holding the shard's read lock.
// It reports whether the key was found.
func (m *ShardedMap[K, V]) View(key K, fn func(V)) bool {
	g, ok := m.Get(key)
	if !ok {
		return false
	}
	defer g.Release()

	fn(g.Value())
	return true
}

/*
Modify replaces the value stored under key with fn(current) while holding the
shard's write lock. It reports whether the key was found.

fn must not call back into the map for a key in the same shard; it would deadlock.
If fn panics the shard is poisoned.
*/
func (m *ShardedMap[K, V]) Modify(key K, fn func(V) V) bool {
	g, ok := m.GetMut(key)
	if !ok {
		return false
	}
	defer g.Release()

	g.Update(fn)
	return true
}
