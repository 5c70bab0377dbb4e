package fixedmap_test

import (
	"strconv"
	"testing"

	"github.com/krisalay/fixedmap"
	"github.com/krisalay/fixedmap/shard"
)

func newBenchmarkMap(opts ...fixedmap.Option[string, int]) *fixedmap.ShardedMap[string, int] {
	m := fixedmap.New(4096, opts...)
	for i := 0; i < 10000; i++ {
		m.Insert("key-"+strconv.Itoa(i), i)
	}
	return m
}

//
// ================= SINGLE THREAD BENCH =================
//

func BenchmarkGetHit(b *testing.B) {
	m := newBenchmarkMap()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if g, ok := m.Get("key-42"); ok {
			g.Release()
		}
	}
}

func BenchmarkContainsMissEmptyShard(b *testing.B) {
	m := fixedmap.New[string, int](4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Contains("missing")
	}
}

func BenchmarkContainsMissEmptyShardNoHint(b *testing.B) {
	m := fixedmap.New(4096, fixedmap.WithoutOccupancyHint[string, int]())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Contains("missing")
	}
}

func BenchmarkInsert(b *testing.B) {
	m := fixedmap.New[string, int](1 << 16)
	keys := make([]string, b.N)
	for i := range keys {
		keys[i] = "key-" + strconv.Itoa(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.Insert(keys[i], i)
	}
}

//
// ================= PARALLEL BENCH =================
//

func BenchmarkParallelGet(b *testing.B) {
	selectors := map[string]shard.Selector[string]{
		"maphash": shard.NewHashSelector[string](),
		"xxh3":    shard.XXH3Selector[string]{},
		"fnv1a":   shard.FNVSelector[string]{},
	}

	for name, s := range selectors {
		b.Run(name, func(b *testing.B) {
			m := newBenchmarkMap(fixedmap.WithSelector[string, int](s))

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					if g, ok := m.Get("key-" + strconv.Itoa(i%10000)); ok {
						g.Release()
					}
					i++
				}
			})
		})
	}
}

func BenchmarkParallelModify(b *testing.B) {
	m := newBenchmarkMap()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			m.Modify("key-"+strconv.Itoa(i%10000), func(v int) int { return v + 1 })
			i++
		}
	})
}
