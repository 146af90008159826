// Package motif finds repeated subsequences. Windows that share a SAX word
// are candidate repeats; a repeat is confirmed when its true distance to the
// word's first occurrence is within range.
package motif

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/trie"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
)

type Options struct {
	WindowSize    int
	NormThreshold float64
	Range         float64
	Workers       int
	Logger        *slog.Logger
}

type Finder struct {
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewFinder(opts Options, m *metrics.Metrics) *Finder {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Finder{
		opts:    opts,
		logger:  logger.OrComponent(opts.Logger, "motif"),
		metrics: m,
	}
}

// Find returns up to count motifs, most frequent first. Words are split into
// one batch per worker and the batches are merged with records.TopMotifs.
func (f *Finder) Find(ctx context.Context, series []float64, tr *trie.Trie, count int) ([]records.MotifRecord, error) {
	w := f.opts.WindowSize
	if w <= 0 || w > len(series) {
		return nil, apperrors.Newf(apperrors.ErrInvalidParameter, "motif", "window %d invalid for series of length %d", w, len(series))
	}
	if f.opts.Range < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidParameter, "motif", "range must be non-negative, got %g", f.opts.Range)
	}
	started := time.Now()

	words := make([]trie.WordFrequency, 0, tr.Len())
	for _, wf := range tr.ByFrequency() {
		if wf.Frequency > 1 {
			words = append(words, wf)
		}
	}

	workers := min(f.opts.Workers, max(1, len(words)))
	batches := make([][]records.MotifRecord, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			var out []records.MotifRecord
			for j := i; j < len(words); j += workers {
				if err := gctx.Err(); err != nil {
					return apperrors.Newf(apperrors.ErrOperationCancelled, "motif", "%v", err)
				}
				if m, ok := f.collect(series, words[j]); ok {
					out = append(out, m)
				}
			}
			batches[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	motifs := records.TopMotifs(batches, count)
	f.metrics.ObserveMotifs(started, len(motifs))
	logger.FromContext(ctx, f.logger).Info("motif search finished",
		"candidate_words", len(words),
		"motifs", len(motifs),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return motifs, nil
}

// collect confirms the repeats of one word. Occurrences are scanned in
// position order and each kept one must not overlap the previous kept one.
func (f *Finder) collect(series []float64, wf trie.WordFrequency) (records.MotifRecord, bool) {
	w := f.opts.WindowSize
	rep := wf.Positions[0]
	base := sax.Normalize(series[rep:rep+w], f.opts.NormThreshold)
	occurrences := []int{rep}
	last := rep
	for _, q := range wf.Positions[1:] {
		if q-last < w {
			continue
		}
		other := sax.Normalize(series[q:q+w], f.opts.NormThreshold)
		if _, within := sax.EarlyAbandonedDistance(base, other, f.opts.Range); within {
			occurrences = append(occurrences, q)
			last = q
		}
	}
	if len(occurrences) < 2 {
		return records.MotifRecord{}, false
	}
	return records.MotifRecord{Position: rep, Word: wf.Word, Occurrences: occurrences}, true
}
