package engine

import (
	"io"
	"log/slog"

	"github.com/krisalay/fixedmap/types"
)

/*
Engine is the observation layer of the map.
It is told about the outcome of every operation, and decides how that
outcome is reported: metrics events and log records.

It does NOT:
- Store data
- Handle sharding
- Handle locking
*/
type Engine struct {

	// Metrics receives one event per operation outcome.
	// Hits, misses, fast misses, inserts, replacements, discards and poisonings.
	Metrics types.Metrics

	// Logger records construction and poisoning. Lookups and inserts are not logged;
	// they are too frequent and already counted by Metrics.
	Logger *slog.Logger
}

/*
NewEngine creates an Engine.
Nil arguments are replaced with no-op implementations so the map never
has to check them on the hot path.
*/
func NewEngine(metrics types.Metrics, logger *slog.Logger) *Engine {
	if metrics == nil {
		metrics = types.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		Metrics: metrics,
		Logger:  logger,
	}
}

// OnCreate is called once when the map has allocated its shards.
func (e *Engine) OnCreate(shards int, occupancyHint bool) {
	e.Logger.Debug("fixedmap created",
		slog.Int("shards", shards),
		slog.Bool("occupancy_hint", occupancyHint))
}

// OnFastMiss is called when the occupancy hint answered a lookup without locking.
func (e *Engine) OnFastMiss() {
	e.Metrics.FastMiss()
}

// OnLookup is called after a lookup scanned its shard under lock.
func (e *Engine) OnLookup(found bool) {
	if found {
		e.Metrics.Hit()
		return
	}
	e.Metrics.Miss()
}

// OnInsert is called after Insert. replaced is true when an existing value was displaced.
func (e *Engine) OnInsert(replaced bool) {
	if replaced {
		e.Metrics.Replace()
		return
	}
	e.Metrics.Insert()
}

// OnInsertNew is called after InsertNew. added is false when the key already existed.
func (e *Engine) OnInsertNew(added bool) {
	if added {
		e.Metrics.Insert()
		return
	}
	e.Metrics.Discard()
}

/*
OnPoison is handed to every shard and runs when a panic escapes while the shard's
write lock is held. The shard is already marked poisoned; the panic continues after
this returns.
*/
func (e *Engine) OnPoison(index int, cause any) {
	e.Metrics.Poison()
	e.Logger.Error("shard poisoned",
		slog.Int("shard", index),
		slog.Any("cause", cause))
}
