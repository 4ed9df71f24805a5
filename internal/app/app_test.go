package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engagemark/engagemark/internal/config"
	"github.com/engagemark/engagemark/internal/report"
)

const testCSV = `Platform,Post ID,Post Type,Post Content,Post Timestamp,Likes,Comments,Shares,Impressions,Reach,Engagement Rate,Audience Age,Audience Gender,Audience Location,Audience Interests,Campaign ID,Sentiment,Influencer ID
Twitter,p001,text,hello world,2024-01-15 10:00:00,900,10,5,2000,1500,3.5,25,Male,NYC,tech,c1,Positive,i1
Instagram,p002,image,sunset pic,2024-01-15 11:00:00,700,20,8,3000,2500,4.25,31,Female,LA,travel,c1,Negative,i2
Twitter,p003,text,another post,2024-01-16 09:30:00,600,5,2,1000,800,2.0,40,Male,SF,tech,c2,Neutral,i1
Facebook,p004,video,clip,bad-timestamp,nan,3,1,500,400,none,28,Female,NYC,food,c2,Positive,i3
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()

	csvPath := filepath.Join(base, "engagement.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testCSV), 0644))

	cfg := config.DefaultConfig()
	cfg.CSVPath = csvPath
	cfg.DataDir = filepath.Join(base, "data")
	cfg.Colstore.FlushThreshold = 2
	cfg.Loader.BatchSize = 2
	cfg.Loader.Workers = 2
	cfg.Resolve()
	return cfg
}

func TestApp_RunAllPhases(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(cfg.Report.OutDir, report.RunReportFile))
	require.NoError(t, err)

	var rep report.Report
	require.NoError(t, json.Unmarshal(data, &rep))

	assert.Equal(t, "sequential", rep.KeyMode)
	assert.Equal(t, 4, rep.ColumnStore.Records)
	assert.Equal(t, 4, rep.SQLStore.Records)
	require.NotNil(t, rep.ColumnStore.Load)
	require.NotNil(t, rep.SQLStore.Load)
	assert.Equal(t, int64(4), rep.ColumnStore.Load.SuccessfulRecords)
	assert.Equal(t, int64(4), rep.SQLStore.Load.SuccessfulRecords)

	// Benchmark results cover both backends.
	benchData, err := os.ReadFile(filepath.Join(cfg.Report.OutDir, report.BenchmarkResultsFile))
	require.NoError(t, err)
	var results map[string]map[string]float64
	require.NoError(t, json.Unmarshal(benchData, &results))
	assert.Contains(t, results, report.BackendColstore)
	assert.Contains(t, results, report.BackendSQLite)
}

func TestApp_LoadPhaseOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Phase = config.PhaseLoad

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	_, err = os.Stat(filepath.Join(cfg.Report.OutDir, report.BenchmarkResultsFile))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.Report.OutDir, report.ColstoreLoadFile))
	assert.NoError(t, err)
}

func TestApp_BenchAfterSeparateLoad(t *testing.T) {
	cfg := testConfig(t)
	cfg.Phase = config.PhaseLoad

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	// A second run benches the data the first run persisted.
	cfg.Phase = config.PhaseBench
	b, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, b.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(cfg.Report.OutDir, report.BenchmarkResultsFile))
	require.NoError(t, err)
	var results map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &results))
	require.Contains(t, results, report.BackendColstore)
	assert.Len(t, results[report.BackendColstore], 8)
}

func TestApp_UploadPublishesReports(t *testing.T) {
	cfg := testConfig(t)
	cfg.Report.Upload = true

	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Run(context.Background()))

	entries, err := os.ReadDir(filepath.Join(cfg.Storage.Path, "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.KeyMode = "nope"
	cfg.DataDir = t.TempDir()
	cfg.Resolve()

	_, err := New(cfg)
	assert.Error(t, err)
}
