package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestNewPrometheus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		p, err := NewPrometheus(prometheus.NewRegistry(), "test")
		require.NoError(t, err)
		assert.NotNil(t, p)
	})

	t.Run("nil registerer", func(t *testing.T) {
		p, err := NewPrometheus(nil, "test")
		assert.ErrorIs(t, err, ErrNilRegisterer)
		assert.Nil(t, p)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		_, err := NewPrometheus(reg, "test")
		require.NoError(t, err)

		_, err = NewPrometheus(reg, "test")
		assert.Error(t, err)
	})
}

func TestPrometheusCounters(t *testing.T) {
	p, err := NewPrometheus(prometheus.NewRegistry(), "test")
	require.NoError(t, err)

	p.Hit()
	p.Hit()
	p.Miss()
	p.FastMiss()
	p.Insert()
	p.Replace()
	p.Discard()
	p.Discard()
	p.Poison()

	assert.Equal(t, 2.0, testutil.ToFloat64(p.lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("fast_miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.writes.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.writes.WithLabelValues("replace")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.writes.WithLabelValues("discard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.poisoned))
}

type fixedOccupancy []int64

func (f fixedOccupancy) Occupancy() []int64 { return f }

func TestOccupancyCollector(t *testing.T) {
	c := NewOccupancyCollector("test", fixedOccupancy{0, 3, 1})

	assert.Equal(t, 3, testutil.CollectAndCount(c, "test_shard_occupancy"))

	want := `
# HELP test_shard_occupancy Occupancy hint of each shard. Approximate; read without locking.
# TYPE test_shard_occupancy gauge
test_shard_occupancy{shard="0"} 0
test_shard_occupancy{shard="1"} 3
test_shard_occupancy{shard="2"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(want), "test_shard_occupancy"))
}

func TestNewOTel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		o, err := NewOTel(otel.GetMeterProvider().Meter("test"))
		require.NoError(t, err)
		assert.NotPanics(t, func() {
			o.Hit()
			o.Miss()
			o.FastMiss()
			o.Insert()
			o.Replace()
			o.Discard()
			o.Poison()
		})
	})

	t.Run("nil meter", func(t *testing.T) {
		o, err := NewOTel(nil)
		assert.ErrorIs(t, err, ErrNilMeter)
		assert.Nil(t, o)
	})
}
