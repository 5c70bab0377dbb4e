package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/krisalay/fixedmap/types"
)

var ErrNilRegisterer = errors.New("metrics: nil registerer")

var _ types.Metrics = (*Prometheus)(nil)

// Prometheus counts map events as Prometheus counters, labelled by result.
type Prometheus struct {
	lookups  *prometheus.CounterVec
	writes   *prometheus.CounterVec
	poisoned prometheus.Counter

	// children resolved once so the hot path does not look up labels.
	hit, miss, fastMiss      prometheus.Counter
	insert, replace, discard prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		return nil, ErrNilRegisterer
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lookups_total",
		Help:      "Lookups by result: hit, miss, or fast_miss when the occupancy hint skipped the lock.",
	}, []string{"result"})

	writes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writes_total",
		Help:      "Insertions by result: insert, replace, or discard when InsertNew hit an existing key.",
	}, []string{"result"})

	poisoned := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poisoned_shards_total",
		Help:      "Shards marked poisoned after a panic under their write lock.",
	})

	for _, c := range []prometheus.Collector{lookups, writes, poisoned} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return &Prometheus{
		lookups:  lookups,
		writes:   writes,
		poisoned: poisoned,
		hit:      lookups.WithLabelValues("hit"),
		miss:     lookups.WithLabelValues("miss"),
		fastMiss: lookups.WithLabelValues("fast_miss"),
		insert:   writes.WithLabelValues("insert"),
		replace:  writes.WithLabelValues("replace"),
		discard:  writes.WithLabelValues("discard"),
	}, nil
}

func (p *Prometheus) Hit()      { p.hit.Inc() }
func (p *Prometheus) Miss()     { p.miss.Inc() }
func (p *Prometheus) FastMiss() { p.fastMiss.Inc() }
func (p *Prometheus) Insert()   { p.insert.Inc() }
func (p *Prometheus) Replace()  { p.replace.Inc() }
func (p *Prometheus) Discard()  { p.discard.Inc() }
func (p *Prometheus) Poison()   { p.poisoned.Inc() }

// OccupancySource is anything that can report per-shard occupancy hints.
type OccupancySource interface {
	Occupancy() []int64
}

var _ prometheus.Collector = (*OccupancyCollector)(nil)

// OccupancyCollector exports each shard's occupancy hint as a gauge at scrape time.
type OccupancyCollector struct {
	src  OccupancySource
	desc *prometheus.Desc
}

func NewOccupancyCollector(namespace string, src OccupancySource) *OccupancyCollector {
	return &OccupancyCollector{
		src: src,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "shard", "occupancy"),
			"Occupancy hint of each shard. Approximate; read without locking.",
			[]string{"shard"},
			nil,
		),
	}
}

func (c *OccupancyCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *OccupancyCollector) Collect(ch chan<- prometheus.Metric) {
	for i, n := range c.src.Occupancy() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), strconv.Itoa(i))
	}
}
