package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/analysis"
	"github.com/Adithya-Monish-Kumar-K/saxsearch/internal/searcher/records"
	apperrors "github.com/Adithya-Monish-Kumar-K/saxsearch/pkg/errors"
)

func TestPrintReportText(t *testing.T) {
	rep := &analysis.Report{
		RunID:        "run-1",
		SeriesLength: 100,
		WindowSize:   10,
		Strategy:     "exact",
		Engine:       analysis.EngineHOTSAX,
		Discords:     []records.DiscordRecord{{Position: 42, NNDistance: 1.5, Length: 10, Rank: 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, rep, false))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "run run-1: 100 points, window 10, exact via hotsax"))
	assert.Contains(t, out, "position=42")
}

func TestPrintReportJSON(t *testing.T) {
	rep := &analysis.Report{RunID: "run-2", Discords: []records.DiscordRecord{}, Motifs: []records.MotifRecord{}}
	var buf bytes.Buffer
	require.NoError(t, printReport(&buf, rep, true))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-2", decoded["run_id"])
}

func TestReadSeriesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte("t,v\n0,1\n1,2\n"), 0o644))
	s, err := readSeries(path, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	_, err = readSeries(filepath.Join(t.TempDir(), "missing.csv"), 0)
	assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCode(err))
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := range 600 {
		v := float64(i%40) / 40
		if i >= 300 && i < 310 {
			v = 3
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		b.WriteByte('\n')
	}
	input := filepath.Join(dir, "series.txt")
	require.NoError(t, os.WriteFile(input, []byte(b.String()), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
discretization:
  windowSize: 20
  paaSize: 4
  alphabetSize: 4
  strategy: none
search:
  discords: 1
  motifs: 1
logging:
  level: error
`), 0o644))

	assert.Equal(t, apperrors.ExitOK, run(cfgPath, input, 0, true))
	assert.Equal(t, apperrors.ExitUsage, run(filepath.Join(dir, "nope.yaml"), input, 0, true))
}
