package discord

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/trie"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/visit"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
)

type HOTSAX struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHOTSAX(opts Options, m *metrics.Metrics) *HOTSAX {
	return &HOTSAX{
		opts:    opts,
		logger:  logger.OrComponent(opts.Logger, "hotsax"),
		metrics: m,
	}
}

type candidate struct {
	pos  int
	word sax.Word
	freq int
	nn   float64
}

// Find reports up to count discords of series. tr must index every window
// start of series, as trie.Build does.
func (h *HOTSAX) Find(ctx context.Context, series []float64, tr *trie.Trie, count int) ([]records.DiscordRecord, Stats, error) {
	var stats Stats
	if err := h.opts.validate(len(series), count); err != nil {
		return nil, stats, err
	}
	started := time.Now()
	log := logger.FromContext(ctx, h.logger)
	w := newWindows(series, h.opts.WindowSize, h.opts.NormThreshold)
	if tr.Positions() != w.count() {
		return nil, stats, apperrors.Newf(apperrors.ErrInvalidParameter, "hotsax",
			"trie indexes %d positions, series has %d windows", tr.Positions(), w.count())
	}
	rng := h.opts.rng()
	global := visit.New(w.count(), rng)
	order := tr.ByFrequency()
	marker := h.opts.marker()

	out := make([]records.DiscordRecord, 0, count)
	for len(out) < count && global.UnvisitedCount() > 0 {
		best, err := h.round(ctx, w, order, global, rng, &stats)
		if err != nil {
			return nil, stats, err
		}
		if best.nn <= 0 {
			break
		}
		out = append(out, records.DiscordRecord{
			Position:   best.pos,
			NNDistance: best.nn,
			Length:     h.opts.WindowSize,
			Rank:       len(out) + 1,
			Word:       best.word,
			Info:       fmt.Sprintf("word %s frequency %d, %d candidates examined", best.word, best.freq, stats.Candidates),
		})
		if err := marker.Mark(global, best.pos, h.opts.WindowSize); err != nil {
			return nil, stats, err
		}
		log.Debug("discord found",
			"rank", len(out),
			"position", best.pos,
			"nn_distance", best.nn,
			"word", string(best.word),
			"unvisited", global.UnvisitedCount(),
		)
	}
	h.metrics.ObserveSearch("hotsax", started, stats.DistanceCalls, stats.Abandoned, len(out))
	log.Info("hotsax search finished",
		"discords", len(out),
		"candidates", stats.Candidates,
		"distance_calls", stats.DistanceCalls,
		"abandoned", stats.Abandoned,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return out, stats, nil
}

// round runs the outer loop once and returns the best candidate, which has
// nn == 0 when no candidate has a positive nearest-neighbour distance.
func (h *HOTSAX) round(ctx context.Context, w *windows, order []trie.WordFrequency, global *visit.Registry, rng *rand.Rand, stats *Stats) (candidate, error) {
	var best candidate
	for _, wf := range order {
		for _, p := range wf.Positions {
			visited, err := global.IsVisited(p)
			if err != nil {
				return best, err
			}
			if visited {
				continue
			}
			if err := cancelled(ctx); err != nil {
				return best, err
			}
			stats.Candidates++
			nn, complete := h.nearestNeighbor(w, wf.Positions, p, best.nn, rng, stats)
			if !complete {
				stats.Abandoned++
				continue
			}
			if !math.IsInf(nn, 1) && nn > best.nn {
				best = candidate{pos: p, word: wf.Word, freq: wf.Frequency, nn: nn}
			}
		}
	}
	return best, nil
}

// nearestNeighbor scans same-word occurrences first, then every remaining
// non-overlapping window in random order. It gives up, returning false, as
// soon as the running distance drops below best.
func (h *HOTSAX) nearestNeighbor(w *windows, sameWord []int, p int, best float64, rng *rand.Rand, stats *Stats) (float64, bool) {
	n := w.count()
	local := visit.New(n, rng)
	_ = local.MarkRange(max(0, p-w.length+1), min(n, p+w.length))
	nn := math.Inf(1)

	for _, q := range sameWord {
		if w.overlaps(p, q) {
			continue
		}
		_ = local.MarkVisited(q)
		if !w.probe(p, q, &nn, best, stats) {
			return nn, false
		}
	}
	for {
		q := local.NextRandomUnvisited()
		if q == visit.NoPosition {
			break
		}
		_ = local.MarkVisited(q)
		if !w.probe(p, q, &nn, best, stats) {
			return nn, false
		}
	}
	return nn, true
}
