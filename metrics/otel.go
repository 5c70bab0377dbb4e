package metrics

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/krisalay/fixedmap/types"
)

var ErrNilMeter = errors.New("metrics: nil meter")

var _ types.Metrics = (*OTel)(nil)

// OTel records map events as OpenTelemetry Int64Counters.
type OTel struct {
	lookups  metric.Int64Counter
	writes   metric.Int64Counter
	poisoned metric.Int64Counter

	hit, miss, fastMiss      metric.AddOption
	insert, replace, discard metric.AddOption
}

func NewOTel(meter metric.Meter) (*OTel, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}

	lookups, errL := meter.Int64Counter("fixedmap.lookups",
		metric.WithDescription("Lookups by result."),
		metric.WithUnit("{lookup}"))
	writes, errW := meter.Int64Counter("fixedmap.writes",
		metric.WithDescription("Insertions by result."),
		metric.WithUnit("{write}"))
	poisoned, errP := meter.Int64Counter("fixedmap.poisoned_shards",
		metric.WithDescription("Shards marked poisoned."),
		metric.WithUnit("{shard}"))
	if err := errors.Join(errL, errW, errP); err != nil {
		return nil, err
	}

	result := func(s string) metric.AddOption {
		return metric.WithAttributes(attribute.String("result", s))
	}

	return &OTel{
		lookups:  lookups,
		writes:   writes,
		poisoned: poisoned,
		hit:      result("hit"),
		miss:     result("miss"),
		fastMiss: result("fast_miss"),
		insert:   result("insert"),
		replace:  result("replace"),
		discard:  result("discard"),
	}, nil
}

// The map has no request context to propagate; events are recorded against Background.

func (o *OTel) Hit()      { o.lookups.Add(context.Background(), 1, o.hit) }
func (o *OTel) Miss()     { o.lookups.Add(context.Background(), 1, o.miss) }
func (o *OTel) FastMiss() { o.lookups.Add(context.Background(), 1, o.fastMiss) }
func (o *OTel) Insert()   { o.writes.Add(context.Background(), 1, o.insert) }
func (o *OTel) Replace()  { o.writes.Add(context.Background(), 1, o.replace) }
func (o *OTel) Discard()  { o.writes.Add(context.Background(), 1, o.discard) }
func (o *OTel) Poison()   { o.poisoned.Add(context.Background(), 1) }
