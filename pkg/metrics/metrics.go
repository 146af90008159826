// Package metrics defines the Prometheus collectors used by the
// discretization pipeline and search engines and exposes an HTTP handler for
// scraping. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	ChunksTotal        *prometheus.CounterVec
	DiscretizeDuration *prometheus.HistogramVec
	WordsRetained      prometheus.Gauge
	DistanceCalls      *prometheus.CounterVec
	EarlyAbandons      *prometheus.CounterVec
	DiscordsFound      *prometheus.CounterVec
	MotifsFound        prometheus.Counter
	SearchDuration     *prometheus.HistogramVec
	SinkWritesTotal    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. Passing
// prometheus.DefaultRegisterer exposes them through Handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChunksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sax_chunks_total",
				Help: "Discretization chunks processed by status (ok, cancelled, error).",
			},
			[]string{"status"},
		),
		DiscretizeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sax_discretize_duration_seconds",
				Help:    "Wall time of one discretization run.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"path"},
		),
		WordsRetained: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sax_words_retained",
				Help: "Positions retained in the occurrence index of the last run.",
			},
		),
		DistanceCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sax_distance_calls_total",
				Help: "Euclidean distance computations by search engine.",
			},
			[]string{"engine"},
		),
		EarlyAbandons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sax_early_abandons_total",
				Help: "Candidates abandoned before a full nearest-neighbour scan.",
			},
			[]string{"engine"},
		),
		DiscordsFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sax_discords_found_total",
				Help: "Discords reported by search engine.",
			},
			[]string{"engine"},
		),
		MotifsFound: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sax_motifs_found_total",
				Help: "Motifs reported.",
			},
		),
		SearchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sax_search_duration_seconds",
				Help:    "Wall time of a discord or motif search.",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 60, 300},
			},
			[]string{"engine"},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sax_sink_writes_total",
				Help: "Report sink writes by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.ChunksTotal,
			m.DiscretizeDuration,
			m.WordsRetained,
			m.DistanceCalls,
			m.EarlyAbandons,
			m.DiscordsFound,
			m.MotifsFound,
			m.SearchDuration,
			m.SinkWritesTotal,
		)
	}

	return m
}

func (m *Metrics) ChunkDone(status string) {
	if m == nil {
		return
	}
	m.ChunksTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveDiscretize(path string, started time.Time, retained int) {
	if m == nil {
		return
	}
	m.DiscretizeDuration.WithLabelValues(path).Observe(time.Since(started).Seconds())
	m.WordsRetained.Set(float64(retained))
}

func (m *Metrics) ObserveSearch(engine string, started time.Time, distanceCalls, abandons int64, discords int) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues(engine).Observe(time.Since(started).Seconds())
	m.DistanceCalls.WithLabelValues(engine).Add(float64(distanceCalls))
	m.EarlyAbandons.WithLabelValues(engine).Add(float64(abandons))
	m.DiscordsFound.WithLabelValues(engine).Add(float64(discords))
}

func (m *Metrics) ObserveMotifs(started time.Time, found int) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues("motif").Observe(time.Since(started).Seconds())
	m.MotifsFound.Add(float64(found))
}

func (m *Metrics) SinkWrite(sink, status string) {
	if m == nil {
		return
	}
	m.SinkWritesTotal.WithLabelValues(sink, status).Inc()
}

// Handler returns the scrape handler for gatherer, or for the default
// registry when gatherer is nil.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
