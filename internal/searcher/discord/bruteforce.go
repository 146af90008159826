package discord

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/visit"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
)

type BruteForce struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewBruteForce(opts Options, m *metrics.Metrics) *BruteForce {
	return &BruteForce{
		opts:    opts,
		logger:  logger.OrComponent(opts.Logger, "brute-force"),
		metrics: m,
	}
}

// Find compares every unvisited candidate with every non-overlapping window
// in position order.
func (b *BruteForce) Find(ctx context.Context, series []float64, count int) ([]records.DiscordRecord, Stats, error) {
	var stats Stats
	if err := b.opts.validate(len(series), count); err != nil {
		return nil, stats, err
	}
	started := time.Now()
	w := newWindows(series, b.opts.WindowSize, b.opts.NormThreshold)
	n := w.count()
	global := visit.New(n, b.opts.rng())
	marker := b.opts.marker()

	out := make([]records.DiscordRecord, 0, count)
	for len(out) < count && global.UnvisitedCount() > 0 {
		bestPos, bestDist := visit.NoPosition, 0.0
		for p := 0; p < n; p++ {
			if visited, _ := global.IsVisited(p); visited {
				continue
			}
			if err := cancelled(ctx); err != nil {
				return nil, stats, err
			}
			stats.Candidates++
			nn := math.Inf(1)
			complete := true
			for q := 0; q < n; q++ {
				if w.overlaps(p, q) {
					continue
				}
				if !w.probe(p, q, &nn, bestDist, &stats) {
					complete = false
					break
				}
			}
			if !complete {
				stats.Abandoned++
				continue
			}
			if !math.IsInf(nn, 1) && nn > bestDist {
				bestPos, bestDist = p, nn
			}
		}
		if bestPos == visit.NoPosition {
			break
		}
		out = append(out, records.DiscordRecord{
			Position:   bestPos,
			NNDistance: bestDist,
			Length:     b.opts.WindowSize,
			Rank:       len(out) + 1,
			Info:       fmt.Sprintf("exhaustive, %d candidates examined", stats.Candidates),
		})
		if err := marker.Mark(global, bestPos, b.opts.WindowSize); err != nil {
			return nil, stats, err
		}
	}
	b.metrics.ObserveSearch("brute-force", started, stats.DistanceCalls, stats.Abandoned, len(out))
	logger.FromContext(ctx, b.logger).Info("brute-force search finished",
		"discords", len(out),
		"distance_calls", stats.DistanceCalls,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return out, stats, nil
}
