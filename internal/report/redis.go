package report

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
)

// Summary is the compact view of a run published to Redis.
type Summary struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	SeriesLength int       `json:"series_length"`
	Engine       string    `json:"engine"`
	Discords     int       `json:"discords"`
	Motifs       int       `json:"motifs"`
	TopPosition  int       `json:"top_position"`
	TopDistance  float64   `json:"top_distance"`
}

// Summarize builds the Summary of r. TopPosition is -1 without discords.
func Summarize(r *analysis.Report) Summary {
	s := Summary{
		RunID:        r.RunID,
		StartedAt:    r.StartedAt,
		SeriesLength: r.SeriesLength,
		Engine:       r.Engine,
		Discords:     len(r.Discords),
		Motifs:       len(r.Motifs),
		TopPosition:  -1,
	}
	if len(r.Discords) > 0 {
		s.TopPosition = r.Discords[0].Position
		s.TopDistance = r.Discords[0].NNDistance
	}
	return s
}

// notifier is satisfied by *redis.Client.
type notifier interface {
	PublishJSON(ctx context.Context, channel string, payload any) (int64, error)
	SetJSON(ctx context.Context, key string, payload any, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisSink stores the summary under sax:run:<id> and publishes it on a
// channel.
type RedisSink struct {
	client  notifier
	channel string
	ttl     time.Duration
}

func NewRedisSink(client notifier, channel string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, channel: channel, ttl: ttl}
}

// SummaryKey is the key a run's summary is stored under.
func SummaryKey(runID string) string { return "sax:run:" + runID }

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *RedisSink) Close() error { return s.client.Close() }

func (s *RedisSink) Write(ctx context.Context, r *analysis.Report) error {
	summary := Summarize(r)
	if err := s.client.SetJSON(ctx, SummaryKey(r.RunID), summary, s.ttl); err != nil {
		return err
	}
	_, err := s.client.PublishJSON(ctx, s.channel, summary)
	return err
}
