package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/krisalay/fixedmap"
	"github.com/krisalay/fixedmap/metrics"
	"github.com/krisalay/fixedmap/shard"
)

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		logger.Error("load config", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if err := opts.apply(parser, &cfg); err != nil {
		logger.Error("invalid flags", slog.String("err", err.Error()))
		os.Exit(2)
	}
	if err := cfg.validate(); err != nil {
		logger.Error("invalid config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("benchmark failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func selectorFor(name string) shard.Selector[string] {
	switch name {
	case "xxh3":
		return shard.XXH3Selector[string]{}
	case "fnv1a":
		return shard.FNVSelector[string]{}
	default:
		return shard.NewHashSelector[string]()
	}
}

func key(i int) string {
	return "key-" + strconv.Itoa(i)
}

func run(cfg Config, logger *slog.Logger) error {
	fmt.Println("\n================ FIXEDMAP LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards       :", cfg.Shards)
	fmt.Println("Keys         :", cfg.Keys)
	fmt.Println("Goroutines   :", cfg.Goroutines)
	fmt.Println("Ops/Goroutine:", cfg.Ops)
	fmt.Println("Read Ratio   :", cfg.ReadRatio)
	fmt.Println("Selector     :", cfg.Selector)
	fmt.Println("Hint         :", !cfg.NoHint)
	fmt.Println("---------------------------------")

	reg := prometheus.NewRegistry()
	pm, err := metrics.NewPrometheus(reg, "fixedmap_bench")
	if err != nil {
		return err
	}

	opts := []fixedmap.Option[string, int]{
		fixedmap.WithSelector[string, int](selectorFor(cfg.Selector)),
		fixedmap.WithMetrics[string, int](pm),
		fixedmap.WithLogger[string, int](logger),
	}
	if cfg.NoHint {
		opts = append(opts, fixedmap.WithoutOccupancyHint[string, int]())
	}
	m := fixedmap.New(cfg.Shards, opts...)

	// ---------------- Preload ----------------
	// Only even keys are preloaded so half of the lookups miss.
	bar := progressbar.Default(int64(cfg.Keys), "preloading")
	var preload errgroup.Group
	chunk := (cfg.Keys + cfg.Goroutines - 1) / cfg.Goroutines
	for lo := 0; lo < cfg.Keys; lo += chunk {
		hi := min(lo+chunk, cfg.Keys)
		preload.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%2 == 0 {
					m.InsertNew(key(i), i)
				}
			}
			return bar.Add(hi - lo)
		})
	}
	if err := preload.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	// ---------------- Load Test ----------------
	total := int64(cfg.Goroutines) * int64(cfg.Ops)
	bar = progressbar.Default(total, "running")

	var reads, writes atomic.Int64
	start := time.Now()

	var load errgroup.Group
	for id := 0; id < cfg.Goroutines; id++ {
		load.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(id), uint64(start.UnixNano())))
			for j := 0; j < cfg.Ops; j++ {
				k := key(rng.IntN(cfg.Keys))
				if rng.Float64() < cfg.ReadRatio {
					if rg, ok := m.Get(k); ok {
						_ = rg.Value()
						rg.Release()
					}
					reads.Add(1)
				} else {
					if !m.Modify(k, func(v int) int { return v + 1 }) {
						m.InsertNew(k, 1)
					}
					writes.Add(1)
				}
				if j%1000 == 999 {
					_ = bar.Add(1000)
				}
			}
			return nil
		})
	}
	if err := load.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	duration := time.Since(start)

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", total)
	fmt.Printf("Reads / Writes   : %d / %d\n", reads.Load(), writes.Load())
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(total)/duration.Seconds())

	entries, empty, largest := 0, 0, 0
	for _, s := range m.Stats() {
		entries += s.Entries
		if s.Entries == 0 {
			empty++
		}
		largest = max(largest, s.Entries)
	}
	fmt.Printf("Entries          : %d\n", entries)
	fmt.Printf("Empty Shards     : %d / %d\n", empty, m.ShardCount())
	fmt.Printf("Largest Shard    : %d\n", largest)

	mfs, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			result := ""
			for _, lp := range metric.GetLabel() {
				result = lp.GetValue()
			}
			fmt.Printf("%-34s %-10s %.0f\n", mf.GetName(), result, metric.GetCounter().GetValue())
		}
	}
	fmt.Println("=========================================")

	return nil
}
