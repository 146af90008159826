package report

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/redis"
)

// Open connects every sink enabled in cfg. On failure the sinks opened so
// far are closed.
func Open(ctx context.Context, cfg *config.Config, l *slog.Logger) ([]Sink, error) {
	var sinks []Sink
	fail := func(err error) ([]Sink, error) {
		for _, s := range sinks {
			s.Close()
		}
		return nil, err
	}
	if cfg.Sinks.Postgres {
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return fail(err)
		}
		if err := client.Migrate(ctx); err != nil {
			client.Close()
			return fail(err)
		}
		sinks = append(sinks, NewPostgresSink(client))
	}
	if cfg.Sinks.Kafka {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.DiscordsTopic, l)
		brokers := cfg.Kafka.Brokers
		sinks = append(sinks, NewKafkaSink(producer, func(ctx context.Context) error {
			return kafka.Ping(ctx, brokers)
		}))
	}
	if cfg.Sinks.Redis {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, NewRedisSink(client, cfg.Redis.Channel, cfg.Redis.SummaryTTL))
	}
	return sinks, nil
}

// Checker registers a health check per sink.
func Checker(sinks []Sink, l *slog.Logger) *health.Checker {
	c := health.NewChecker(l)
	for _, s := range sinks {
		c.Register(s.Name(), health.PingCheck(s.Ping))
	}
	return c
}
