package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/report"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/series"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	input := flag.String("input", "-", "series file, - for stdin")
	column := flag.Int("column", 0, "zero-based column holding the values")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	os.Exit(run(*configPath, *input, *column, *asJSON))
}

func run(configPath, input string, column int, asJSON bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return apperrors.ExitUsage
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := readSeries(input, column)
	if err != nil {
		slog.Error("failed to read series", "input", input, "error", err)
		return apperrors.ExitCode(err)
	}

	sinks, err := report.Open(ctx, cfg, slog.Default())
	if err != nil {
		slog.Error("failed to open sinks", "error", err)
		return apperrors.ExitFatal
	}
	checker := report.Checker(sinks, slog.Default())
	if err := checker.Preflight(ctx); err != nil {
		slog.Error("preflight failed", "error", err)
		return apperrors.ExitFatal
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		shutdown := metrics.StartServer(cfg.Metrics.Port, reg, checker.ReadyHandler())
		defer shutdownWithin(shutdown, 5*time.Second)
	}

	dispatcher := report.NewDispatcher(sinks, cfg.Sinks, slog.Default(), m)
	defer dispatcher.Close()

	runner, err := analysis.NewRunner(cfg, slog.Default(), m)
	if err != nil {
		slog.Error("invalid analysis settings", "error", err)
		return apperrors.ExitCode(err)
	}
	rep, err := runner.Run(ctx, s)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		return apperrors.ExitCode(err)
	}

	if err := printReport(os.Stdout, rep, asJSON); err != nil {
		slog.Error("failed to print report", "error", err)
		return apperrors.ExitInternal
	}
	if err := dispatcher.Dispatch(ctx, rep); err != nil {
		slog.Error("report delivery incomplete", "error", err)
		return apperrors.ExitFatal
	}
	return apperrors.ExitOK
}

func readSeries(input string, column int) (series.Series, error) {
	if input == "-" {
		return series.ReadColumn(os.Stdin, column)
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "open", "%v", err)
	}
	defer f.Close()
	return series.ReadColumn(f, column)
}

func printReport(w io.Writer, rep *analysis.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	fmt.Fprintf(w, "run %s: %d points, window %d, %s via %s\n",
		rep.RunID, rep.SeriesLength, rep.WindowSize, rep.Strategy, rep.Engine)
	for _, d := range rep.Discords {
		fmt.Fprintln(w, d.String())
	}
	for _, m := range rep.Motifs {
		fmt.Fprintln(w, m.String())
	}
	_, err := fmt.Fprintf(w, "distance calls: %d\n", rep.Search.DistanceCalls)
	return err
}

func shutdownWithin(shutdown func(context.Context) error, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown", "error", err)
	}
}
