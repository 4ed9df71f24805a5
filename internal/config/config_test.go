package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	assert.NoError(t, cfg.Validate())
}

func TestResolve_DerivesPathsFromDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/em"
	cfg.Resolve()

	assert.Equal(t, filepath.Join("/tmp/em", "storage"), cfg.Storage.Path)
	assert.Equal(t, filepath.Join("/tmp/em", "reports"), cfg.Report.OutDir)
	assert.Equal(t, filepath.Join("/tmp/em", "social_media.db"), cfg.SQLitePath())
}

func TestValidate_Errors(t *testing.T) {
	cases := map[string]func(*Config){
		"bad phase":        func(c *Config) { c.Phase = "maybe" },
		"missing data dir": func(c *Config) { c.DataDir = "" },
		"missing csv":      func(c *Config) { c.CSVPath = "" },
		"bad key mode":     func(c *Config) { c.KeyMode = "random" },
		"bad storage type": func(c *Config) { c.Storage.Type = "gcs" },
		"s3 needs bucket":  func(c *Config) { c.Storage.Type = "s3" },
	}

	for name, mutate := range cases {
		cfg := DefaultConfig()
		cfg.Resolve()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestValidate_BenchPhaseWithoutCSV(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resolve()
	cfg.Phase = PhaseBench
	cfg.CSVPath = ""
	assert.NoError(t, cfg.Validate())
}

func TestPhaseSelectors(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Phase = PhaseAll
	assert.True(t, cfg.ShouldLoad())
	assert.True(t, cfg.ShouldBench())

	cfg.Phase = PhaseLoad
	assert.True(t, cfg.ShouldLoad())
	assert.False(t, cfg.ShouldBench())

	cfg.Phase = PhaseBench
	assert.False(t, cfg.ShouldLoad())
	assert.True(t, cfg.ShouldBench())
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
phase: load
csv_path: /data/engagement.csv
key_mode: hashed
loader:
  batch_size: 500
  workers: 5
bench:
  scan_limit: 2000
storage:
  type: s3
  s3:
    bucket: engagemark-data
    region: eu-west-1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, PhaseLoad, cfg.Phase)
	assert.Equal(t, "/data/engagement.csv", cfg.CSVPath)
	assert.Equal(t, "hashed", cfg.KeyMode)
	assert.Equal(t, 500, cfg.Loader.BatchSize)
	assert.Equal(t, 5, cfg.Loader.Workers)
	assert.Equal(t, 2000, cfg.Bench.ScanLimit)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "engagemark-data", cfg.Storage.S3.Bucket)

	// Unset fields keep their defaults.
	assert.Equal(t, "./data/engagemark", cfg.DataDir)
	assert.Equal(t, 10000, cfg.Colstore.FlushThreshold)
}

func TestLoadFromFile_Unsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ENGAGEMARK_PHASE", "bench")
	t.Setenv("ENGAGEMARK_KEY_MODE", "hashed")
	t.Setenv("ENGAGEMARK_LOADER_WORKERS", "7")
	t.Setenv("ENGAGEMARK_REPORT_UPLOAD", "true")
	t.Setenv("ENGAGEMARK_S3_BUCKET", "bkt")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	assert.Equal(t, PhaseBench, cfg.Phase)
	assert.Equal(t, "hashed", cfg.KeyMode)
	assert.Equal(t, 7, cfg.Loader.Workers)
	assert.True(t, cfg.Report.Upload)
	assert.Equal(t, "bkt", cfg.Storage.S3.Bucket)
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(base, "data")
	cfg.Resolve()

	require.NoError(t, cfg.EnsureDirectories())
	for _, dir := range []string{cfg.DataDir, cfg.Storage.Path, cfg.Report.OutDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
