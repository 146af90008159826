// Package report delivers analysis reports to external systems. Every
// enabled sink receives the whole report; a sink failure does not stop the
// others.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/resilience"
)

// Sink writes one report somewhere.
type Sink interface {
	Name() string
	Write(ctx context.Context, r *analysis.Report) error
	Ping(ctx context.Context) error
	Close() error
}

// Dispatcher fans a report out to its sinks with retries and a per-write
// timeout.
type Dispatcher struct {
	sinks   []Sink
	retry   resilience.RetryConfig
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(sinks []Sink, cfg config.SinksConfig, l *slog.Logger, m *metrics.Metrics) *Dispatcher {
	l = logger.OrComponent(l, "report")
	return &Dispatcher{
		sinks:   sinks,
		retry:   resilience.RetryConfig{MaxAttempts: cfg.RetryAttempts, Logger: l},
		timeout: cfg.WriteTimeout,
		logger:  l,
		metrics: m,
	}
}

func (d *Dispatcher) Sinks() []Sink { return d.sinks }

// Dispatch writes r to every sink and joins the failures.
func (d *Dispatcher) Dispatch(ctx context.Context, r *analysis.Report) error {
	ctx = logger.WithRunID(ctx, r.RunID)
	log := logger.FromContext(ctx, d.logger)
	var errs []error
	for _, s := range d.sinks {
		err := resilience.Retry(ctx, "sink."+s.Name(), d.retry, func(ctx context.Context) error {
			return resilience.WithTimeout(ctx, d.timeout, "sink."+s.Name(), func(ctx context.Context) error {
				return s.Write(ctx, r)
			})
		})
		if err != nil {
			d.metrics.SinkWrite(s.Name(), "error")
			log.Error("report delivery failed", "sink", s.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		d.metrics.SinkWrite(s.Name(), "ok")
		log.Info("report delivered", "sink", s.Name())
	}
	return errors.Join(errs...)
}

// Close closes every sink.
func (d *Dispatcher) Close() error {
	var errs []error
	for _, s := range d.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
