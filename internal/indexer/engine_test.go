package indexer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
)

func newTestEngine(t *testing.T, p sax.Params) *Engine {
	t.Helper()
	e, err := NewEngine(p, config.PipelineConfig{ChunkTimeout: time.Minute, ShutdownGrace: 5 * time.Second}, logger.Discard(), nil)
	require.NoError(t, err)
	return e
}

// testSeries mixes a slow sine with noise and flat stretches so that every
// suppression strategy has something to drop.
func testSeries(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(float64(i)/9) + 0.3*rng.NormFloat64()
		if (i/40)%3 == 2 {
			out[i] = math.Sin(float64(i) / 9)
		}
	}
	return out
}

func TestDiscretizeKnownWord(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 8, PAASize: 3, AlphabetSize: 3, NormThreshold: 0.01})
	idx, err := e.Discretize(context.Background(), []float64{-1, -2, -1, 0, 2, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "acc", idx.Export(","))
}

func TestDiscretizeNoneKeepsEveryWindow(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 4, PAASize: 2, AlphabetSize: 4, NormThreshold: 0.01})
	idx, err := e.Discretize(context.Background(), testSeries(30, 1))
	require.NoError(t, err)
	assert.Equal(t, 27, idx.Len())
	for i, entry := range idx.Entries() {
		assert.Equal(t, i, entry.Position)
	}
}

func TestDiscretizeWindowLongerThanSeries(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 40, PAASize: 4, AlphabetSize: 4})
	_, err := e.Discretize(context.Background(), testSeries(30, 1))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
	_, err = e.DiscretizeParallel(context.Background(), testSeries(30, 1), 4)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParameter)
}

func TestDiscretizeExactSuppression(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 10, PAASize: 3, AlphabetSize: 3, Strategy: sax.StrategyExact, NormThreshold: 0.01})
	series := testSeries(200, 3)
	idx, err := e.Discretize(context.Background(), series)
	require.NoError(t, err)

	entries := idx.Entries()
	require.NotEmpty(t, entries)
	assert.Equal(t, 0, entries[0].Position)
	for i := 1; i < len(entries); i++ {
		assert.NotEqual(t, entries[i-1].Word, entries[i].Word)
	}
	assert.Less(t, idx.Len(), len(series)-10+1)
}

func TestDiscretizeMinDistSuppression(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 10, PAASize: 4, AlphabetSize: 6, Strategy: sax.StrategyMinDist, NormThreshold: 0.01})
	idx, err := e.Discretize(context.Background(), testSeries(200, 4))
	require.NoError(t, err)
	entries := idx.Entries()
	for i := 1; i < len(entries); i++ {
		assert.False(t, sax.ZeroDistance(entries[i-1].Word, entries[i].Word))
	}
}

func TestPlanChunks(t *testing.T) {
	chunks := planChunks(103, 10, 4)
	require.Len(t, chunks, 4)
	assert.Equal(t, chunk{id: 0, from: 0, to: 28}, chunks[0])
	assert.Equal(t, chunk{id: 1, from: 28, to: 53}, chunks[1])
	assert.Equal(t, chunk{id: 2, from: 53, to: 78}, chunks[2])
	assert.Equal(t, chunk{id: 3, from: 78, to: 94}, chunks[3])
}

func TestParallelMatchesSequential(t *testing.T) {
	strategies := []sax.Strategy{sax.StrategyNone, sax.StrategyExact, sax.StrategyMinDist}
	shapes := []struct{ window, paa, alphabet int }{
		{8, 3, 3},
		{12, 4, 4},
		{15, 6, 5},
		{20, 7, 8},
	}
	for seed := uint64(1); seed <= 3; seed++ {
		series := testSeries(240, seed)
		for _, shape := range shapes {
			for _, strategy := range strategies {
				name := fmt.Sprintf("seed%d/w%d_p%d_a%d/%s", seed, shape.window, shape.paa, shape.alphabet, strategy)
				t.Run(name, func(t *testing.T) {
					e := newTestEngine(t, sax.Params{
						WindowSize:    shape.window,
						PAASize:       shape.paa,
						AlphabetSize:  shape.alphabet,
						Strategy:      strategy,
						NormThreshold: 0.01,
					})
					want, err := e.Discretize(context.Background(), series)
					require.NoError(t, err)
					for threads := 1; threads <= len(series)/shape.window; threads++ {
						got, err := e.DiscretizeParallel(context.Background(), series, threads)
						require.NoError(t, err)
						require.Equal(t, want.Entries(), got.Entries(), "threads=%d", threads)
					}
				})
			}
		}
	}
}

func TestParallelFallsBackForShortSeries(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 10, PAASize: 2, AlphabetSize: 3, Strategy: sax.StrategyExact})
	series := testSeries(25, 9)
	want, err := e.Discretize(context.Background(), series)
	require.NoError(t, err)
	got, err := e.DiscretizeParallel(context.Background(), series, 8)
	require.NoError(t, err)
	assert.Equal(t, want.Entries(), got.Entries())
}

func TestParallelCancellation(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 2000, PAASize: 10, AlphabetSize: 5, Strategy: sax.StrategyExact, NormThreshold: 0.01})
	series := testSeries(10000, 5)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(time.Millisecond)
		cancel()
	}()

	done := make(chan struct{})
	var err error
	go func() {
		defer close(done)
		_, err = e.DiscretizeParallel(ctx, series, 2)
	}()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatal("parallel discretization did not return after cancellation")
	}
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrOperationCancelled)
}

func TestParallelCancelledBeforeStart(t *testing.T) {
	e := newTestEngine(t, sax.Params{WindowSize: 50, PAASize: 5, AlphabetSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	idx, err := e.DiscretizeParallel(ctx, testSeries(1000, 2), 4)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, apperrors.ErrOperationCancelled)

	idx, err = e.Discretize(ctx, testSeries(1000, 2))
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, apperrors.ErrOperationCancelled)
}

func TestParallelChunkTimeout(t *testing.T) {
	e, err := NewEngine(
		sax.Params{WindowSize: 100, PAASize: 8, AlphabetSize: 5, NormThreshold: 0.01},
		config.PipelineConfig{ChunkTimeout: time.Microsecond, ShutdownGrace: 5 * time.Second},
		logger.Discard(), nil,
	)
	require.NoError(t, err)

	idx, err := e.DiscretizeParallel(context.Background(), testSeries(20000, 3), 2)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.NotErrorIs(t, err, apperrors.ErrOperationCancelled)
}

func TestParallelReportsPoolTermination(t *testing.T) {
	e, err := NewEngine(
		sax.Params{WindowSize: 100, PAASize: 8, AlphabetSize: 5, NormThreshold: 0.01},
		config.PipelineConfig{ChunkTimeout: time.Minute, ShutdownGrace: time.Nanosecond},
		logger.Discard(), nil,
	)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx, err := e.DiscretizeParallel(ctx, testSeries(200000, 4), 2)
	assert.Nil(t, idx)
	assert.ErrorIs(t, err, apperrors.ErrPoolTermination)
	assert.NotErrorIs(t, err, apperrors.ErrOperationCancelled)
}

func TestSuppressMatchesSequential(t *testing.T) {
	series := testSeries(150, 6)
	none := newTestEngine(t, sax.Params{WindowSize: 9, PAASize: 3, AlphabetSize: 4, NormThreshold: 0.01})
	exact := newTestEngine(t, sax.Params{WindowSize: 9, PAASize: 3, AlphabetSize: 4, Strategy: sax.StrategyExact, NormThreshold: 0.01})

	idx, err := none.Discretize(context.Background(), series)
	require.NoError(t, err)
	Suppress(idx, sax.StrategyExact)

	want, err := exact.Discretize(context.Background(), series)
	require.NoError(t, err)
	assert.Equal(t, want.Entries(), idx.Entries())
}
