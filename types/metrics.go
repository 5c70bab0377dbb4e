package types

// This file defines how the map reports what it is doing.

/*
Metrics is an interface that defines what the map wants to measure.
Each method represents an event in the life of an operation. The map calls these methods
whenever something happens.
*/
type Metrics interface {

	// Hit is called when Get, GetMut or Contains finds the key.
	Hit()

	// Miss is called when a lookup locked the shard, scanned it and did not find the key.
	Miss()

	// FastMiss is called when the occupancy hint answered "absent" without taking any lock.
	FastMiss()

	// Insert is called when a new entry is appended to a shard.
	Insert()

	// Replace is called when Insert overwrites the value of an existing key.
	Replace()

	// Discard is called when InsertNew finds the key already present and drops its arguments.
	Discard()

	// Poison is called when a shard is marked poisoned after a panic under its write lock.
	Poison()
}

/*
NoopMetrics is a "do nothing" implementation of Metrics.

We don't want to force every user of the map to implement metrics,
and we don't want nil checks on the hot path. So the default
implementation simply ignores all events.
*/
type NoopMetrics struct{}

func (NoopMetrics) Hit()      {}
func (NoopMetrics) Miss()     {}
func (NoopMetrics) FastMiss() {}
func (NoopMetrics) Insert()   {}
func (NoopMetrics) Replace()  {}
func (NoopMetrics) Discard()  {}
func (NoopMetrics) Poison()   {}
