package indexer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/resilience"
)

// chunk covers the window start positions [from, to). Its worker reads
// series[from : to-1+windowSize], i.e. windowSize-1 points past the nominal
// chunk end.
type chunk struct {
	id   int
	from int
	to   int
}

// planChunks splits [0, n) into threads nominal chunks, the first one
// absorbing the remainder, and clips every chunk to valid start positions.
func planChunks(n, windowSize, threads int) []chunk {
	size := n / threads
	lastStart := n - windowSize
	chunks := make([]chunk, 0, threads)
	start := 0
	for i := 0; i < threads; i++ {
		end := start + size
		if i == 0 {
			end += n % threads
		}
		chunks = append(chunks, chunk{id: i, from: start, to: min(end, lastStart+1)})
		start = end
	}
	return chunks
}

// DiscretizeParallel produces the same index as Discretize using threads
// chunk workers. It falls back to the sequential path when a chunk would be
// shorter than one window.
func (e *Engine) DiscretizeParallel(ctx context.Context, series []float64, threads int) (*index.OccurrenceIndex, error) {
	if err := e.params.ValidateFor(len(series)); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx, e.logger)
	if threads <= 1 || len(series)/threads < e.params.WindowSize {
		if threads > 1 {
			log.Debug("too few points per thread, discretizing sequentially",
				"points", len(series),
				"threads", threads,
				"window", e.params.WindowSize,
			)
		}
		return e.Discretize(ctx, series)
	}

	started := time.Now()
	chunks := planChunks(len(series), e.params.WindowSize, threads)

	// MINDIST is not transitive, so chunks cannot decide it locally.
	workerStrategy := e.params.Strategy
	if workerStrategy == sax.StrategyMinDist {
		workerStrategy = sax.StrategyNone
	}

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(poolCtx)
	g.SetLimit(threads)
	results := make(chan chunkResult, len(chunks))
	for _, c := range chunks {
		g.Go(func() error {
			res := e.discretizeRange(gctx, series, c.from, c.to, workerStrategy)
			res.id = c.id
			results <- res
			return res.err
		})
	}

	st := newStitcher(workerStrategy)
	timer := time.NewTimer(e.cfg.ChunkTimeout)
	defer timer.Stop()
	for pending := len(chunks); pending > 0; pending-- {
		select {
		case res := <-results:
			if res.err != nil {
				e.metrics.ChunkDone(chunkStatus(res.err))
				return nil, e.abort(cancel, g, fmt.Sprintf("chunk %d", res.id), res.err)
			}
			e.metrics.ChunkDone("ok")
			st.add(res)
			log.Debug("chunk merged",
				"chunk", res.id,
				"from", res.from,
				"to", res.to,
				"retained", res.index.Len(),
			)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(e.cfg.ChunkTimeout)
		case <-ctx.Done():
			return nil, e.abort(cancel, g, "coordinator", ctx.Err())
		case <-timer.C:
			err := apperrors.Newf(apperrors.ErrTimeout, "discretize", "%d chunks pending after %v", pending, e.cfg.ChunkTimeout)
			return nil, e.abort(cancel, g, "coordinator", err)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, cancelled("discretize", err)
	}

	merged := st.finish(e.params.Strategy)
	e.metrics.ObserveDiscretize("parallel", started, merged.Len())
	log.Debug("series discretized in parallel",
		"points", len(series),
		"threads", threads,
		"retained", merged.Len(),
		"words", merged.WordCount(),
		"strategy", e.params.Strategy.String(),
	)
	return merged, nil
}

// abort cancels the pool and waits up to the shutdown grace period for every
// worker to return. A pool that does not drain in time is reported as
// ErrPoolTermination, which takes precedence over the triggering error.
func (e *Engine) abort(cancel context.CancelFunc, g *errgroup.Group, source string, cause error) error {
	cancel()
	waitErr := resilience.WithTimeout(context.Background(), e.cfg.ShutdownGrace, "discretizer pool shutdown", func(context.Context) error {
		_ = g.Wait()
		return nil
	})
	if waitErr != nil {
		e.logger.Error("worker pool did not terminate", "grace", e.cfg.ShutdownGrace, "error", waitErr)
		return apperrors.Newf(apperrors.ErrPoolTermination, "discretize", "%s: %v (after %v)", source, cause, waitErr)
	}
	e.logger.Warn("parallel discretization aborted", "source", source, "error", cause)
	return cancelled("discretize", cause)
}

func chunkStatus(err error) string {
	if apperrors.Is(err, context.Canceled) || apperrors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "error"
}
