package report

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/kafka"
)

// DiscordEvent is the message published for every discord.
type DiscordEvent struct {
	RunID      string                `json:"run_id"`
	Engine     string                `json:"engine"`
	WindowSize int                   `json:"window_size"`
	Discord    records.DiscordRecord `json:"discord"`
	Timestamp  time.Time             `json:"timestamp"`
}

// publisher is satisfied by *kafka.Producer.
type publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
	Close() error
}

// KafkaSink publishes one event per discord keyed by run id, so a run's
// events stay ordered on one partition.
type KafkaSink struct {
	producer publisher
	ping     func(ctx context.Context) error
}

func NewKafkaSink(p publisher, ping func(ctx context.Context) error) *KafkaSink {
	return &KafkaSink{producer: p, ping: ping}
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) Ping(ctx context.Context) error {
	if k.ping == nil {
		return nil
	}
	return k.ping(ctx)
}

func (k *KafkaSink) Close() error { return k.producer.Close() }

func (k *KafkaSink) Write(ctx context.Context, r *analysis.Report) error {
	now := time.Now().UTC()
	events := make([]kafka.Event, 0, len(r.Discords))
	for _, d := range r.Discords {
		events = append(events, kafka.Event{
			Key: r.RunID,
			Value: DiscordEvent{
				RunID:      r.RunID,
				Engine:     r.Engine,
				WindowSize: r.WindowSize,
				Discord:    d,
				Timestamp:  now,
			},
			Headers: map[string]string{"run_id": r.RunID},
		})
	}
	return k.producer.PublishBatch(ctx, events)
}
