package api

import "github.com/krisalay/fixedmap/shard"

/*
Map defines the PUBLIC API of the fixed-size concurrent map.
This is a contract that guarantees certain behaviors without exposing internals.
Sharding, hashing, locking and the occupancy hint are all hidden behind it.
*/
type Map[K comparable, V any] interface {

	/*
		Get returns a read accessor for key.

		BEHAVIOR:
		---------
		- If the key is stored: returns an accessor holding the shard's read lock, and true
		- If not: returns nil and false, with no lock held

		The caller MUST Release the accessor. Until then, writers to the same shard wait.
	*/
	Get(key K) (*shard.ReadGuard[K, V], bool)

	/*
		GetMut returns a write accessor for key.

		BEHAVIOR:
		---------
		- If the key is stored: returns an accessor holding the shard's write lock, and true
		- If not: returns nil and false, with no lock held

		Changes made through the accessor are visible to every later lookup.
	*/
	GetMut(key K) (*shard.WriteGuard[K, V], bool)

	/*
		Contains reports whether key is stored.

		A shard whose occupancy hint is zero answers without locking.
	*/
	Contains(key K) bool

	/*
		Insert stores value under key.

		RETURN VALUES:
		--------------
		- (previous, true) : the key existed and its value was replaced
		- (zero, false)    : a new entry was created
	*/
	Insert(key K, value V) (V, bool)

	/*
		InsertNew stores value under key only if the key is absent.

		If the key already exists nothing changes and nothing is reported.
		This is deliberate: InsertNew never overwrites.
	*/
	InsertNew(key K, value V)
}
