package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, "info", "json")
	ctx := WithRunID(context.Background(), "run-7")
	FromContext(ctx, base).Info("hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "run-7", rec["run_id"])
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "run-7", RunID(ctx))
	assert.Empty(t, RunID(context.Background()))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "text")
	l.Info("dropped")
	assert.Zero(t, buf.Len())
	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestOrComponent(t *testing.T) {
	var buf bytes.Buffer
	OrComponent(New(&buf, "info", "json"), "hotsax").Info("x")
	assert.Contains(t, buf.String(), `"component":"hotsax"`)
	assert.NotNil(t, OrComponent(nil, "hotsax"))
}
