// Package benchmark measures discretization and discord search throughput.
package benchmark

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
)

func benchSeries(n int) []float64 {
	rng := rand.New(rand.NewPCG(1, 2))
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(float64(i)/15) + 0.3*rng.NormFloat64()
	}
	return out
}

func benchEngine(b *testing.B, strategy sax.Strategy) *indexer.Engine {
	b.Helper()
	e, err := indexer.NewEngine(
		sax.Params{WindowSize: 100, PAASize: 4, AlphabetSize: 4, Strategy: strategy, NormThreshold: 0.01},
		config.PipelineConfig{ChunkTimeout: time.Minute, ShutdownGrace: time.Second},
		logger.Discard(), nil,
	)
	if err != nil {
		b.Fatal(err)
	}
	return e
}

// BenchmarkDiscretize compares the sequential path with the chunk pool.
func BenchmarkDiscretize(b *testing.B) {
	series := benchSeries(50000)
	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			e := benchEngine(b, sax.StrategyExact)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				var err error
				if threads == 1 {
					_, err = e.Discretize(context.Background(), series)
				} else {
					_, err = e.DiscretizeParallel(context.Background(), series, threads)
				}
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTransform measures a single window's SAX conversion.
func BenchmarkTransform(b *testing.B) {
	series := benchSeries(100)
	cuts, err := sax.Cuts(8)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sax.Transform(series, 8, cuts, 0.01); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkIndexFloor measures ordered lookups on a populated index.
func BenchmarkIndexFloor(b *testing.B) {
	idx := index.New()
	for i := 0; i < 100000; i += 3 {
		idx.Add(i, "abcd")
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx.Floor(i % 100000)
	}
}
