// Package tracing times the stages of an analysis run. Spans travel in the
// context, form a tree under the run's root span and are written to slog
// when the run ends.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type contextKey string

const spanKey contextKey = "sax_span"

// Span is one timed stage of a run.
type Span struct {
	Name     string
	RunID    string
	Start    time.Time
	Duration time.Duration
	Children []*Span
	Attrs    map[string]any
	mu       sync.Mutex
}

// Stage is the flattened, serialisable view of a finished span.
type Stage struct {
	Name       string         `json:"name"`
	DurationMS int64          `json:"duration_ms"`
	Depth      int            `json:"depth"`
	Attrs      map[string]any `json:"attrs,omitempty"`
}

// StartRun creates the root span of a run and stores it in the returned
// context.
func StartRun(ctx context.Context, name, runID string) (context.Context, *Span) {
	span := &Span{
		Name:  name,
		RunID: runID,
		Start: time.Now(),
		Attrs: make(map[string]any),
	}
	return context.WithValue(ctx, spanKey, span), span
}

// StartStage opens a child of the span in ctx. Without a parent the stage is
// detached and simply timed.
func StartStage(ctx context.Context, name string) (context.Context, *Span) {
	parent := FromContext(ctx)
	child := &Span{
		Name:  name,
		Start: time.Now(),
		Attrs: make(map[string]any),
	}
	if parent != nil {
		child.RunID = parent.RunID
		parent.mu.Lock()
		parent.Children = append(parent.Children, child)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, spanKey, child), child
}

func (s *Span) End() {
	s.mu.Lock()
	s.Duration = time.Since(s.Start)
	s.mu.Unlock()
}

func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// FromContext returns the current span, or nil.
func FromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(spanKey).(*Span); ok {
		return span
	}
	return nil
}

// Stages flattens the tree depth first, root included.
func (s *Span) Stages() []Stage {
	var out []Stage
	s.flatten(0, &out)
	return out
}

func (s *Span) flatten(depth int, out *[]Stage) {
	s.mu.Lock()
	stage := Stage{Name: s.Name, DurationMS: s.Duration.Milliseconds(), Depth: depth}
	if len(s.Attrs) > 0 {
		stage.Attrs = make(map[string]any, len(s.Attrs))
		for k, v := range s.Attrs {
			stage.Attrs[k] = v
		}
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()
	*out = append(*out, stage)
	for _, child := range children {
		child.flatten(depth+1, out)
	}
}

// Log writes one record per stage.
func (s *Span) Log(l *slog.Logger) {
	for _, st := range s.Stages() {
		attrs := []any{
			"run_id", s.RunID,
			"span", st.Name,
			"duration_ms", st.DurationMS,
			"depth", st.Depth,
		}
		for k, v := range st.Attrs {
			attrs = append(attrs, k, v)
		}
		l.Debug("stage", attrs...)
	}
}
