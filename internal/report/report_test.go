package report

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/logger"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		RunID:        "0b7e7f6a-4d5e-4b8a-9a53-2c9a4cbb2f10",
		StartedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		SeriesLength: 1000,
		WindowSize:   50,
		Engine:       analysis.EngineHOTSAX,
		Discords: []records.DiscordRecord{
			{Position: 420, NNDistance: 6.5, Length: 50, Rank: 1, Word: "acdb"},
			{Position: 90, NNDistance: 3.25, Length: 50, Rank: 2, Word: "bbca"},
		},
		Motifs: []records.MotifRecord{{Position: 0, Word: "abcd", Occurrences: []int{0, 100, 200}}},
	}
}

type flakySink struct {
	name     string
	failures int
	writes   int
	mu       sync.Mutex
}

func (f *flakySink) Name() string { return f.name }
func (f *flakySink) Ping(context.Context) error { return nil }
func (f *flakySink) Close() error { return nil }
func (f *flakySink) Write(context.Context, *analysis.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writes <= f.failures {
		return errors.New("unavailable")
	}
	return nil
}

func sinksConfig() config.SinksConfig {
	return config.SinksConfig{RetryAttempts: 3, WriteTimeout: time.Second}
}

func TestDispatchRetriesAndContinues(t *testing.T) {
	flaky := &flakySink{name: "flaky", failures: 2}
	dead := &flakySink{name: "dead", failures: 100}
	healthy := &flakySink{name: "healthy"}
	d := NewDispatcher([]Sink{flaky, dead, healthy}, sinksConfig(), logger.Discard(), nil)

	err := d.Dispatch(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink.dead")
	assert.Equal(t, 3, flaky.writes)
	assert.Equal(t, 3, dead.writes)
	assert.Equal(t, 1, healthy.writes)
	assert.NoError(t, d.Close())
}

type recordingPublisher struct {
	events []kafka.Event
}

func (r *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func TestKafkaSinkPublishesOneEventPerDiscord(t *testing.T) {
	pub := &recordingPublisher{}
	sink := NewKafkaSink(pub, nil)
	rep := sampleReport()
	require.NoError(t, sink.Write(context.Background(), rep))

	require.Len(t, pub.events, 2)
	for i, e := range pub.events {
		assert.Equal(t, rep.RunID, e.Key)
		ev, ok := e.Value.(DiscordEvent)
		require.True(t, ok)
		assert.Equal(t, rep.Discords[i], ev.Discord)
		assert.Equal(t, rep.RunID, e.Headers["run_id"])
	}
	assert.NoError(t, sink.Ping(context.Background()))
}

type memoryNotifier struct {
	published map[string][]byte
	stored    map[string][]byte
	ttl       time.Duration
}

func (m *memoryNotifier) PublishJSON(_ context.Context, channel string, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	m.published[channel] = data
	return 1, err
}

func (m *memoryNotifier) SetJSON(_ context.Context, key string, payload any, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	m.stored[key] = data
	m.ttl = ttl
	return err
}

func (m *memoryNotifier) Ping(context.Context) error { return nil }
func (m *memoryNotifier) Close() error { return nil }

func TestRedisSinkStoresAndPublishesSummary(t *testing.T) {
	n := &memoryNotifier{published: map[string][]byte{}, stored: map[string][]byte{}}
	sink := NewRedisSink(n, "sax:runs", time.Hour)
	rep := sampleReport()
	require.NoError(t, sink.Write(context.Background(), rep))

	var got Summary
	require.NoError(t, json.Unmarshal(n.published["sax:runs"], &got))
	assert.Equal(t, Summarize(rep), got)
	assert.Equal(t, 420, got.TopPosition)
	assert.Equal(t, 2, got.Discords)
	assert.JSONEq(t, string(n.published["sax:runs"]), string(n.stored[SummaryKey(rep.RunID)]))
	assert.Equal(t, time.Hour, n.ttl)
}

func TestSummarizeWithoutDiscords(t *testing.T) {
	s := Summarize(&analysis.Report{RunID: "r"})
	assert.Equal(t, -1, s.TopPosition)
	assert.Zero(t, s.TopDistance)
}

func TestCheckerCoversSinks(t *testing.T) {
	c := Checker([]Sink{&flakySink{name: "a"}, &flakySink{name: "b"}}, logger.Discard())
	report := c.Run(context.Background())
	assert.Equal(t, health.StatusUp, report.Status)
	assert.Len(t, report.Components, 2)
}

func TestOpenWithoutSinks(t *testing.T) {
	sinks, err := Open(context.Background(), config.Default(), logger.Discard())
	require.NoError(t, err)
	assert.Empty(t, sinks)
}
