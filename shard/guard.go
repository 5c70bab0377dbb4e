package shard

import "fmt"

/*
This file defines the accessors returned by lookups.

An accessor is a live borrow: it holds the shard's lock and the position of
one entry. The value is only valid while the accessor is held, so callers
should defer Release right after a successful lookup:

	g, ok := m.Get(key)
	if !ok {
		return
	}
	defer g.Release()

While an accessor is held, any other operation on the same shard from the
same goroutine may deadlock. Accessors must not be shared between goroutines.
A panic that unwinds through a deferred WriteGuard.Release poisons the shard.
*/

// ReadGuard is a shared accessor. Other readers of the same shard may run alongside it.
type ReadGuard[K comparable, V any] struct {
	shard    *Shard[K, V]
	index    int
	released bool
}

// Key returns the stored key.
func (g *ReadGuard[K, V]) Key() K {
	g.mustHold()
	return g.shard.store.at(g.index).Key
}

// Value returns the stored value.
func (g *ReadGuard[K, V]) Value() V {
	g.mustHold()
	return g.shard.store.at(g.index).Value
}

// Release unlocks the shard. It is safe to call more than once and on a nil guard.
func (g *ReadGuard[K, V]) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.shard.mu.RUnlock()
}

func (g *ReadGuard[K, V]) mustHold() {
	if g.released {
		panic(fmt.Errorf("%w: shard %d", ErrReleased, g.shard.index))
	}
}

// WriteGuard is an exclusive accessor. Nothing else can touch the shard until it is released.
type WriteGuard[K comparable, V any] struct {
	shard    *Shard[K, V]
	index    int
	released bool
}

// Key returns the stored key.
func (g *WriteGuard[K, V]) Key() K {
	g.mustHold()
	return g.shard.store.at(g.index).Key
}

// Value returns the current value.
func (g *WriteGuard[K, V]) Value() V {
	g.mustHold()
	return g.shard.store.at(g.index).Value
}

// Set replaces the value in place and returns the previous one.
func (g *WriteGuard[K, V]) Set(v V) (old V) {
	g.mustHold()
	e := g.shard.store.at(g.index)
	old, e.Value = e.Value, v
	return old
}

/*
Update replaces the value with fn(current).

If fn panics the shard is poisoned: the value may be half-written, so every
later operation on this shard panics with ErrPoisoned. The panic continues
after the shard is marked; a deferred Release still unlocks it.
*/
func (g *WriteGuard[K, V]) Update(fn func(V) V) {
	g.mustHold()
	defer g.shard.poisonOnPanic()

	e := g.shard.store.at(g.index)
	e.Value = fn(e.Value)
}

/*
Release unlocks the shard. It is safe to call more than once and on a nil guard.

When deferred directly, Release also sees a panic raised while the guard was
held. Any value obtained from Value may have been left half-modified, so the
shard is poisoned before it is unlocked and the panic continues.
*/
func (g *WriteGuard[K, V]) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true

	r := recover()
	if r != nil {
		g.shard.poison(r)
	}
	g.shard.mu.Unlock()
	if r != nil {
		panic(r)
	}
}

func (g *WriteGuard[K, V]) mustHold() {
	if g.released {
		panic(fmt.Errorf("%w: shard %d", ErrReleased, g.shard.index))
	}
}
