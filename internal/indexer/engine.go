package indexer

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
)

// Engine turns a series into an occurrence index of SAX words, either on the
// calling goroutine or split across a pool of chunk workers.
type Engine struct {
	params  sax.Params
	cuts    []float64
	cfg     config.PipelineConfig
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewEngine(params sax.Params, cfg config.PipelineConfig, l *slog.Logger, m *metrics.Metrics) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	cuts, err := sax.Cuts(params.AlphabetSize)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkTimeout <= 0 {
		cfg.ChunkTimeout = time.Hour
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	return &Engine{
		params:  params,
		cuts:    cuts,
		cfg:     cfg,
		logger:  logger.OrComponent(l, "discretizer"),
		metrics: m,
	}, nil
}

func (e *Engine) Params() sax.Params {
	return e.params
}

// Discretize indexes every window of series on the calling goroutine.
func (e *Engine) Discretize(ctx context.Context, series []float64) (*index.OccurrenceIndex, error) {
	if err := e.params.ValidateFor(len(series)); err != nil {
		return nil, err
	}
	started := time.Now()
	res := e.discretizeRange(ctx, series, 0, len(series)-e.params.WindowSize+1, e.params.Strategy)
	if res.err != nil {
		return nil, cancelled("discretize", res.err)
	}
	e.metrics.ObserveDiscretize("sequential", started, res.index.Len())
	logger.FromContext(ctx, e.logger).Debug("series discretized",
		"points", len(series),
		"retained", res.index.Len(),
		"words", res.index.WordCount(),
		"strategy", e.params.Strategy.String(),
	)
	return res.index, nil
}

// chunkResult is what one worker hands back to the coordinator.
type chunkResult struct {
	id    int
	from  int
	to    int
	index *index.OccurrenceIndex
	first sax.Word
	last  sax.Word
	err   error
}

// discretizeRange indexes the windows starting in [from, to). Cancellation
// is checked before every window; a cancelled range carries no index.
func (e *Engine) discretizeRange(ctx context.Context, series []float64, from, to int, strategy sax.Strategy) chunkResult {
	res := chunkResult{from: from, to: to}
	idx := index.New()
	var prev sax.Word
	for i := from; i < to; i++ {
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}
		word, err := sax.Transform(series[i:i+e.params.WindowSize], e.params.PAASize, e.cuts, e.params.NormThreshold)
		if err != nil {
			res.err = err
			return res
		}
		if i == from {
			res.first = word
		}
		res.last = word
		if i > from && strategy.Redundant(prev, word) {
			continue
		}
		prev = word
		idx.Add(i, word)
	}
	res.index = idx
	return res
}

func cancelled(op string, err error) error {
	if apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded) {
		return apperrors.Newf(apperrors.ErrOperationCancelled, op, "%v", err)
	}
	return err
}
