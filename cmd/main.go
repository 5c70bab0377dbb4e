package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/krisalay/fixedmap"
	"github.com/krisalay/fixedmap/metrics"
)

// triple is a composite key, the way callers index by several fields at once.
type triple struct {
	a, b, c int
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("SHARDS          : 1024")
	fmt.Println("KEY TYPE        : struct{a, b, c int}")
	fmt.Println("OCCUPANCY HINT  : on")

	reg := prometheus.NewRegistry()
	m, err := metrics.NewPrometheus(reg, "fixedmap_demo")
	if err != nil {
		logger.Error("register metrics", slog.String("err", err.Error()))
		os.Exit(1)
	}

	hm := fixedmap.New(1024,
		fixedmap.WithMetrics[triple, int](m),
		fixedmap.WithLogger[triple, int](logger),
	)
	reg.MustRegister(metrics.NewOccupancyCollector("fixedmap_demo", hm))

	// ====================================================
	fmt.Println("\n==================== 1) CONCURRENT INSERT ====================")
	wg := sync.WaitGroup{}
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hm.Insert(triple{100 * i, 1000 * i, 10000 * i}, 999*i)
		}(i)
	}
	wg.Wait()

	for i := 1; i <= 10; i++ {
		hm.View(triple{100 * i, 1000 * i, 10000 * i}, func(v int) {
			fmt.Printf("MAP    → GET (%d,%d,%d) = %d\n", 100*i, 1000*i, 10000*i, v)
		})
	}

	// ====================================================
	fmt.Println("\n==================== 2) WRITE ACCESSOR ====================")
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, ok := hm.GetMut(triple{100 * i, 1000 * i, 10000 * i})
			if !ok {
				return
			}
			defer g.Release()
			g.Set(g.Value() * 100)
		}(i)
	}
	wg.Wait()

	if g, ok := hm.Get(triple{100, 1000, 10000}); ok {
		fmt.Println("MAP    → GET (100,1000,10000) after ×100 =", g.Value())
		g.Release()
	} else {
		fmt.Println("MAP    → GET (100,1000,10000) missing")
	}

	// ====================================================
	fmt.Println("\n==================== 3) INSERT vs INSERT_NEW ====================")
	old, replaced := hm.Insert(triple{1, 2, 3}, 1)
	fmt.Println("MAP    → INSERT (1,2,3)=1 replaced:", replaced, "old:", old)
	old, replaced = hm.Insert(triple{1, 2, 3}, 2)
	fmt.Println("MAP    → INSERT (1,2,3)=2 replaced:", replaced, "old:", old)
	hm.InsertNew(triple{1, 2, 3}, 3)
	hm.View(triple{1, 2, 3}, func(v int) {
		fmt.Println("MAP    → INSERT_NEW (1,2,3)=3 ignored, value still", v)
	})

	// ====================================================
	fmt.Println("\n==================== 4) ABSENCE ====================")
	fmt.Println("MAP    → CONTAINS (0,0,0) =", hm.Contains(triple{}))
	_, ok := hm.Get(triple{7, 7, 7})
	fmt.Println("MAP    → GET (7,7,7) found =", ok)

	// ====================================================
	fmt.Println("\n==================== METRICS ====================")
	mfs, err := reg.Gather()
	if err != nil {
		logger.Error("gather metrics", slog.String("err", err.Error()))
		os.Exit(1)
	}
	for _, mf := range mfs {
		if mf.GetName() == "fixedmap_demo_shard_occupancy" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			label := ""
			for _, lp := range metric.GetLabel() {
				label = lp.GetValue()
			}
			fmt.Printf("%-40s %-10s %.0f\n", mf.GetName(), label, metric.GetCounter().GetValue())
		}
	}

	used := 0
	for _, s := range hm.Stats() {
		if s.Entries > 0 {
			used++
		}
	}
	fmt.Printf("SHARDS IN USE : %d / %d\n", used, hm.ShardCount())
}
