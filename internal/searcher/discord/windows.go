// Package discord finds the subsequences whose nearest non-overlapping
// neighbour is farthest away. HOTSAX visits candidates rarest SAX word first
// and abandons a candidate as soon as it cannot beat the best discord so far;
// BruteForce compares every pair and serves as the reference.
package discord

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/visit"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

// Options are shared by both engines.
type Options struct {
	WindowSize    int
	NormThreshold float64
	Marker        visit.Marker
	Seed          uint64
	Logger        *slog.Logger
}

// Stats counts the work a search did.
type Stats struct {
	Candidates    int64 `json:"candidates"`
	DistanceCalls int64 `json:"distance_calls"`
	Abandoned     int64 `json:"abandoned"`
}

func (o Options) validate(seriesLen, count int) error {
	if o.WindowSize <= 0 || o.WindowSize > seriesLen {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "discord", "window %d invalid for series of length %d", o.WindowSize, seriesLen)
	}
	if count < 0 {
		return apperrors.Newf(apperrors.ErrInvalidParameter, "discord", "discord count %d is negative", count)
	}
	return nil
}

func (o Options) marker() visit.Marker {
	if o.Marker == nil {
		return visit.SymmetricMarker{}
	}
	return o.Marker
}

func (o Options) rng() *rand.Rand {
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0xda942042e4dd58b5))
}

// windows lazily z-normalizes subsequences; every window is normalized at
// most once per search.
type windows struct {
	series    []float64
	length    int
	threshold float64
	cache     [][]float64
}

func newWindows(series []float64, length int, threshold float64) *windows {
	return &windows{
		series:    series,
		length:    length,
		threshold: threshold,
		cache:     make([][]float64, len(series)-length+1),
	}
}

func (w *windows) count() int { return len(w.cache) }

func (w *windows) at(p int) []float64 {
	if w.cache[p] == nil {
		w.cache[p] = sax.Normalize(w.series[p:p+w.length], w.threshold)
	}
	return w.cache[p]
}

// overlaps reports whether the windows starting at p and q share a point.
func (w *windows) overlaps(p, q int) bool {
	d := p - q
	return d < w.length && -d < w.length
}

// probe compares candidate p with q, tightening nn. It reports false when
// the candidate fell below best and should be abandoned.
func (w *windows) probe(p, q int, nn *float64, best float64, stats *Stats) bool {
	stats.DistanceCalls++
	if d, ok := sax.EarlyAbandonedDistance(w.at(p), w.at(q), *nn); ok && d < *nn {
		*nn = d
	}
	return *nn >= best
}

func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Newf(apperrors.ErrOperationCancelled, "discord", "%v", err)
	}
	return nil
}
