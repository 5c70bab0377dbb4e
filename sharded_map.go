package fixedmap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/krisalay/fixedmap/api"
	"github.com/krisalay/fixedmap/engine"
	"github.com/krisalay/fixedmap/shard"
	"github.com/krisalay/fixedmap/types"
)

var (
	// ErrInvalidShardCount is raised by New when the shard count is not positive.
	ErrInvalidShardCount = errors.New("fixedmap: shard count must be positive")

	// ErrPoisoned is raised by any operation that reaches a poisoned shard.
	ErrPoisoned = shard.ErrPoisoned

	// ErrReleased is raised when an accessor is used after Release.
	ErrReleased = shard.ErrReleased
)

/*
ShardedMap is a concurrent hash map with a fixed number of shards.
This struct is the orchestrator that connects:
- shards (storage + locking)
- the selector (key → shard index)
- the occupancy hint fast path
- the engine (metrics + logging)

The shard count is chosen once in New and never changes. There is no
resizing and no deletion; entries live as long as the map.
*/
type ShardedMap[K comparable, V any] struct {
	// shards are the storage units. Each one has its own lock.
	shards []*shard.Shard[K, V]

	// selector decides which shard a key goes to.
	selector shard.Selector[K]

	// engine receives operation outcomes.
	engine *engine.Engine

	// hint enables the lock-free "definitely empty" check on lookups.
	hint bool
}

// Option configures a ShardedMap.
type Option[K comparable, V any] func(*config[K, V])

type config[K comparable, V any] struct {
	selector shard.Selector[K]
	metrics  types.Metrics
	logger   *slog.Logger
	hint     bool
}

// WithSelector replaces the default generic hasher.
func WithSelector[K comparable, V any](s shard.Selector[K]) Option[K, V] {
	return func(c *config[K, V]) {
		c.selector = s
	}
}

// WithMetrics reports operation outcomes to m.
func WithMetrics[K comparable, V any](m types.Metrics) Option[K, V] {
	return func(c *config[K, V]) {
		c.metrics = m
	}
}

// WithLogger logs construction and shard poisoning to l.
func WithLogger[K comparable, V any](l *slog.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.logger = l
	}
}

// WithoutOccupancyHint makes every lookup lock and scan its shard.
func WithoutOccupancyHint[K comparable, V any]() Option[K, V] {
	return func(c *config[K, V]) {
		c.hint = false
	}
}

/*
New creates a map with the given number of shards, all empty.

Choose shards from the expected number of keys and goroutines: lookups scan a
shard linearly, so keep the expected entries per shard small.

New panics with ErrInvalidShardCount if shards is zero or negative.
*/
func New[K comparable, V any](shards int, opts ...Option[K, V]) *ShardedMap[K, V] {
	if shards <= 0 {
		panic(fmt.Errorf("%w: got %d", ErrInvalidShardCount, shards))
	}

	cfg := config[K, V]{hint: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.selector == nil {
		cfg.selector = shard.NewHashSelector[K]()
	}

	eng := engine.NewEngine(cfg.metrics, cfg.logger)

	s := make([]*shard.Shard[K, V], shards)
	for i := range s {
		s[i] = shard.NewShard[K, V](i, eng.OnPoison)
	}

	eng.OnCreate(shards, cfg.hint)

	return &ShardedMap[K, V]{
		shards:   s,
		selector: cfg.selector,
		engine:   eng,
		hint:     cfg.hint,
	}
}

// shardFor returns the shard that owns key.
func (m *ShardedMap[K, V]) shardFor(key K) *shard.Shard[K, V] {
	return m.shards[m.selector.Index(key, len(m.shards))]
}

// empty consults the occupancy hint. True means the shard definitely holds nothing.
func (m *ShardedMap[K, V]) empty(sh *shard.Shard[K, V]) bool {
	if m.hint && sh.Occupancy() == 0 {
		m.engine.OnFastMiss()
		return true
	}
	return false
}

/*
Get returns a read accessor for key.

The accessor holds the shard's read lock until Release is called. Other readers
of the same shard proceed; writers to that shard wait.
*/
func (m *ShardedMap[K, V]) Get(key K) (*shard.ReadGuard[K, V], bool) {
	sh := m.shardFor(key)
	if m.empty(sh) {
		return nil, false
	}

	g, ok := sh.Read(key)
	m.engine.OnLookup(ok)
	return g, ok
}

/*
GetMut returns a write accessor for key.

The accessor holds the shard's write lock until Release is called. Nothing else
can read or write that shard in the meantime.
*/
func (m *ShardedMap[K, V]) GetMut(key K) (*shard.WriteGuard[K, V], bool) {
	sh := m.shardFor(key)
	if m.empty(sh) {
		return nil, false
	}

	g, ok := sh.Write(key)
	m.engine.OnLookup(ok)
	return g, ok
}

// Contains reports whether key is stored.
func (m *ShardedMap[K, V]) Contains(key K) bool {
	sh := m.shardFor(key)
	if m.empty(sh) {
		return false
	}

	ok := sh.Contains(key)
	m.engine.OnLookup(ok)
	return ok
}

/*
Insert stores value under key.

If the key was present its value is replaced and the previous value is
returned with true. Otherwise the zero value and false are returned.
*/
func (m *ShardedMap[K, V]) Insert(key K, value V) (V, bool) {
	old, replaced := m.shardFor(key).Insert(key, value)
	m.engine.OnInsert(replaced)
	return old, replaced
}

/*
InsertNew stores value under key only if key is absent.

A collision is not an error: the map is left unchanged and key/value are
dropped. Use Insert and compare its result if the outcome matters.
*/
func (m *ShardedMap[K, V]) InsertNew(key K, value V) {
	added := m.shardFor(key).InsertNew(key, value)
	m.engine.OnInsertNew(added)
}

var _ api.Map[string, int] = (*ShardedMap[string, int])(nil)
