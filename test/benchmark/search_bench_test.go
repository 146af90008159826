package benchmark

import (
	"context"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/discord"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/trie"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
)

func benchTrie(b *testing.B, series []float64) *trie.Trie {
	b.Helper()
	e := benchEngine(b, sax.StrategyExact)
	idx, err := e.Discretize(context.Background(), series)
	if err != nil {
		b.Fatal(err)
	}
	tr, err := trie.Build(idx, len(series)-100)
	if err != nil {
		b.Fatal(err)
	}
	return tr
}

// BenchmarkHOTSAX measures the top-3 discord search on 5 000 points.
func BenchmarkHOTSAX(b *testing.B) {
	series := benchSeries(5000)
	tr := benchTrie(b, series)
	h := discord.NewHOTSAX(discord.Options{WindowSize: 100, NormThreshold: 0.01, Seed: 1, Logger: logger.Discard()}, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := h.Find(context.Background(), series, tr, 3); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkBruteForce is the reference for BenchmarkHOTSAX.
func BenchmarkBruteForce(b *testing.B) {
	series := benchSeries(5000)
	bf := discord.NewBruteForce(discord.Options{WindowSize: 100, NormThreshold: 0.01, Logger: logger.Discard()}, nil)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := bf.Find(context.Background(), series, 3); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTrieBuild measures trie construction from a suppressed index.
func BenchmarkTrieBuild(b *testing.B) {
	series := benchSeries(50000)
	e := benchEngine(b, sax.StrategyExact)
	idx, err := e.Discretize(context.Background(), series)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := trie.Build(idx, len(series)-100); err != nil {
			b.Fatal(err)
		}
	}
}
