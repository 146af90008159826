// Package analysis runs the full pipeline over one series: discretize,
// build the word trie, search for discords and motifs.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/sax"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/discord"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/motif"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/trie"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/visit"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/series"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/series/validator"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/tracing"
)

const (
	EngineHOTSAX     = "hotsax"
	EngineBruteForce = "brute-force"
)

// Report is the outcome of one run.
type Report struct {
	RunID         string                  `json:"run_id"`
	StartedAt     time.Time               `json:"started_at"`
	SeriesLength  int                     `json:"series_length"`
	WindowSize    int                     `json:"window_size"`
	PAASize       int                     `json:"paa_size"`
	AlphabetSize  int                     `json:"alphabet_size"`
	Strategy      string                  `json:"strategy"`
	Engine        string                  `json:"engine"`
	WordsRetained int                     `json:"words_retained"`
	DistinctWords int                     `json:"distinct_words"`
	Discords      []records.DiscordRecord `json:"discords"`
	Motifs        []records.MotifRecord   `json:"motifs"`
	Search        discord.Stats           `json:"search"`
	Stages        []tracing.Stage         `json:"stages"`
}

type Runner struct {
	cfg     *config.Config
	params  sax.Params
	engine  *indexer.Engine
	marker  visit.Marker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRunner(cfg *config.Config, l *slog.Logger, m *metrics.Metrics) (*Runner, error) {
	params, err := sax.ParamsFromConfig(cfg.Discretization)
	if err != nil {
		return nil, err
	}
	engine, err := indexer.NewEngine(params, cfg.Pipeline, l, m)
	if err != nil {
		return nil, err
	}
	marker, err := visit.MarkerByName(cfg.Search.Marker)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:     cfg,
		params:  params,
		engine:  engine,
		marker:  marker,
		logger:  logger.OrComponent(l, "analysis"),
		metrics: m,
	}, nil
}

// Run analyses s. Cancelling ctx stops whichever stage is running and the
// error wraps ErrOperationCancelled. Stage timings are logged whether or not
// the run succeeds.
func (r *Runner) Run(ctx context.Context, s series.Series) (_ *Report, err error) {
	if err := validator.ValidateSeries(s, r.params.WindowSize); err != nil {
		return nil, err
	}
	report := &Report{
		RunID:        uuid.NewString(),
		StartedAt:    time.Now().UTC(),
		SeriesLength: s.Len(),
		WindowSize:   r.params.WindowSize,
		PAASize:      r.params.PAASize,
		AlphabetSize: r.params.AlphabetSize,
		Strategy:     r.params.Strategy.String(),
		Engine:       r.engineFor(s.Len()),
		Discords:     []records.DiscordRecord{},
		Motifs:       []records.MotifRecord{},
	}
	ctx = logger.WithRunID(ctx, report.RunID)
	ctx, root := tracing.StartRun(ctx, "analysis", report.RunID)
	log := logger.FromContext(ctx, r.logger)
	log.Info("analysis started",
		"points", s.Len(),
		"window", r.params.WindowSize,
		"strategy", report.Strategy,
		"threads", r.cfg.Pipeline.Threads,
		"engine", report.Engine,
	)
	defer func() {
		root.End()
		if err != nil {
			root.SetAttr("error", err.Error())
			log.Error("analysis failed", "error", err, "duration_ms", time.Since(report.StartedAt).Milliseconds())
		}
		root.Log(log)
	}()

	idx, err := r.discretize(ctx, s)
	if err != nil {
		return nil, err
	}
	report.WordsRetained = idx.Len()
	report.DistinctWords = idx.WordCount()

	_, span := tracing.StartStage(ctx, "trie")
	tr, err := trie.Build(idx, s.Len()-r.params.WindowSize)
	span.End()
	if err != nil {
		return nil, err
	}

	if r.cfg.Search.Discords > 0 {
		sctx, span := tracing.StartStage(ctx, "discords")
		ds, stats, err := r.searchDiscords(sctx, s, tr, report.Engine)
		span.SetAttr("distance_calls", stats.DistanceCalls)
		span.End()
		if err != nil {
			return nil, err
		}
		report.Discords = ds
		report.Search = stats
	}

	if r.cfg.Search.Motifs > 0 {
		mctx, span := tracing.StartStage(ctx, "motifs")
		finder := motif.NewFinder(motif.Options{
			WindowSize:    r.params.WindowSize,
			NormThreshold: r.params.NormThreshold,
			Range:         r.cfg.Search.MotifRange,
			Workers:       r.cfg.Pipeline.Threads,
			Logger:        r.logger,
		}, r.metrics)
		ms, err := finder.Find(mctx, s, tr, r.cfg.Search.Motifs)
		span.End()
		if err != nil {
			return nil, err
		}
		report.Motifs = ms
	}

	root.End()
	report.Stages = root.Stages()
	log.Info("analysis finished",
		"discords", len(report.Discords),
		"motifs", len(report.Motifs),
		"duration_ms", time.Since(report.StartedAt).Milliseconds(),
	)
	return report, nil
}

func (r *Runner) engineFor(n int) string {
	if n < r.cfg.Search.BruteForceBelow {
		return EngineBruteForce
	}
	return EngineHOTSAX
}

// discretize builds the index for s, in parallel when more than one thread
// is configured. The index is exported when IndexExport is set; an export
// failure does not fail the run.
func (r *Runner) discretize(ctx context.Context, s series.Series) (*index.OccurrenceIndex, error) {
	ctx, span := tracing.StartStage(ctx, "discretize")
	defer span.End()

	threads := r.cfg.Pipeline.Threads
	span.SetAttr("threads", threads)
	var idx *index.OccurrenceIndex
	var err error
	if threads > 1 {
		idx, err = r.engine.DiscretizeParallel(ctx, s, threads)
	} else {
		idx, err = r.engine.Discretize(ctx, s)
	}
	if err != nil {
		return nil, err
	}
	if path := r.cfg.Pipeline.IndexExport; path != "" {
		if err := segment.Write(path, idx, segment.MetaFor(s, r.params)); err != nil {
			logger.FromContext(ctx, r.logger).Warn("failed to export index", "path", path, "error", err)
		} else {
			span.SetAttr("exported", path)
		}
	}
	return idx, nil
}

func (r *Runner) searchDiscords(ctx context.Context, s series.Series, tr *trie.Trie, engine string) ([]records.DiscordRecord, discord.Stats, error) {
	opts := discord.Options{
		WindowSize:    r.params.WindowSize,
		NormThreshold: r.params.NormThreshold,
		Marker:        r.marker,
		Seed:          r.cfg.Search.Seed,
		Logger:        r.logger,
	}
	if engine == EngineBruteForce {
		return discord.NewBruteForce(opts, r.metrics).Find(ctx, s, r.cfg.Search.Discords)
	}
	return discord.NewHOTSAX(opts, r.metrics).Find(ctx, s, tr, r.cfg.Search.Discords)
}
