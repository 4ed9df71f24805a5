package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagemark/engagemark/internal/bench"
	"github.com/engagemark/engagemark/internal/loader"
	"github.com/engagemark/engagemark/internal/storage"
)

func fullReport() *Report {
	r := New("sequential")
	r.ColumnStore = BackendOutcome{
		Load: &loader.Stats{
			LoadTime:          1.5,
			RecordsPerSecond:  2000,
			TotalRecords:      3000,
			SuccessfulRecords: 3000,
			SuccessRate:       100,
		},
		Bench: bench.Results{
			bench.OpRead:                0.01,
			bench.OpAggregation:         0.02,
			bench.OpQuery:               0.03,
			bench.OpFilteredRead:        0.01,
			bench.OpRangeAggregation:    0.02,
			bench.OpTopN:                0.01,
			bench.OpCombinedAggregation: 0.04,
			bench.OpCountNegative:       0.01,
		},
		Records: 3000,
	}
	r.SQLStore = BackendOutcome{
		Load: &loader.Stats{
			LoadTime:          2.5,
			RecordsPerSecond:  1200,
			TotalRecords:      3000,
			SuccessfulRecords: 3000,
			SuccessRate:       100,
		},
		Bench: bench.Results{
			bench.OpRead:                0.005,
			bench.OpAggregation:         0.01,
			bench.OpQuery:               0.02,
			bench.OpFilteredRead:        0.01,
			bench.OpRangeAggregation:    0.01,
			bench.OpTopN:                0.005,
			bench.OpCombinedAggregation: 0.02,
			bench.OpCountNegative:       0.005,
		},
		Records: 3000,
	}
	return r
}

func TestReport_WriteAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := fullReport()

	paths, err := r.Write(dir)
	require.NoError(t, err)

	wantFiles := []string{
		RunReportFile,
		BenchmarkResultsFile,
		BenchChartFile,
		ColstoreLoadFile,
		SQLiteLoadFile,
		LoadChartFile,
	}
	require.Len(t, paths, len(wantFiles))
	for _, name := range wantFiles {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestReport_BenchmarkResultsShape(t *testing.T) {
	dir := t.TempDir()
	r := fullReport()
	_, err := r.Write(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, BenchmarkResultsFile))
	require.NoError(t, err)

	var decoded map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Contains(t, decoded, BackendSQLite)
	require.Contains(t, decoded, BackendColstore)
	for _, op := range bench.Operations {
		assert.Contains(t, decoded[BackendSQLite], op)
		assert.Contains(t, decoded[BackendColstore], op)
	}
}

func TestReport_PartialWriteSkipsMissingSections(t *testing.T) {
	dir := t.TempDir()
	r := New("hashed")
	r.ColumnStore.Load = &loader.Stats{LoadTime: 1}

	paths, err := r.Write(dir)
	require.NoError(t, err)

	// Only the run report and the one load report exist.
	require.Len(t, paths, 2)
	_, err = os.Stat(filepath.Join(dir, BenchmarkResultsFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, LoadChartFile))
	assert.True(t, os.IsNotExist(err))
}

func TestReport_ChartsAreValidSVG(t *testing.T) {
	r := fullReport()

	for _, svg := range [][]byte{r.loadChartSVG(), r.benchChartSVG()} {
		text := string(svg)
		assert.True(t, strings.HasPrefix(text, "<svg"))
		assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "</svg>"))
		assert.Contains(t, text, "colstore")
		assert.Contains(t, text, "sqlite")
	}
}

func TestReport_Upload(t *testing.T) {
	dir := t.TempDir()
	r := fullReport()
	paths, err := r.Write(dir)
	require.NoError(t, err)

	objects, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Upload(ctx, objects, paths))

	uploaded, err := objects.List(ctx, "reports/"+r.RunID)
	require.NoError(t, err)
	assert.Len(t, uploaded, len(paths))
}

func TestNew_RunID(t *testing.T) {
	a := New("sequential")
	b := New("sequential")
	assert.Len(t, a.RunID, 8)
	assert.NotEqual(t, a.RunID, b.RunID)
}
