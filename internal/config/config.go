// Package config provides unified configuration for the engagemark tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/engagemark/engagemark/internal/bench"
	"github.com/engagemark/engagemark/internal/loader"
)

// Phase represents which part of a run to execute.
type Phase string

const (
	PhaseAll   Phase = "all"
	PhaseLoad  Phase = "load"
	PhaseBench Phase = "bench"
)

// Config holds the unified configuration for all engagemark tools.
type Config struct {
	// Phase specifies what to run: all, load, bench
	Phase Phase `json:"phase" yaml:"phase"`

	// CSVPath is the input dataset
	CSVPath string `json:"csv_path" yaml:"csv_path"`

	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// KeyMode selects the row key scheme: sequential, hashed
	KeyMode string `json:"key_mode" yaml:"key_mode"`

	// Colstore configuration
	Colstore ColstoreConfig `json:"colstore" yaml:"colstore"`

	// Loader configuration
	Loader loader.Config `json:"loader" yaml:"loader"`

	// Bench configuration
	Bench bench.Params `json:"bench" yaml:"bench"`

	// Report configuration
	Report ReportConfig `json:"report" yaml:"report"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// ColstoreConfig holds column store configuration.
type ColstoreConfig struct {
	// FlushThreshold is the memtable size that triggers a segment flush
	FlushThreshold int `json:"flush_threshold" yaml:"flush_threshold"`
}

// ReportConfig holds report output configuration.
type ReportConfig struct {
	// OutDir is the directory for JSON reports and charts
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Upload pushes report files to object storage after writing
	Upload bool `json:"upload" yaml:"upload"`
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local runs.
func DefaultConfig() *Config {
	return &Config{
		Phase:   PhaseAll,
		CSVPath: "./social_media_engagement_data.csv",
		DataDir: "./data/engagemark",
		KeyMode: "sequential",
		Colstore: ColstoreConfig{
			FlushThreshold: 10000,
		},
		Loader: loader.DefaultConfig(),
		Bench:  bench.DefaultParams(),
		Report: ReportConfig{
			OutDir: "",
			Upload: false,
		},
		Storage: StorageConfig{
			Type: "local",
			Path: "",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/engagemark"
	}

	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
	if c.Report.OutDir == "" {
		c.Report.OutDir = filepath.Join(c.DataDir, "reports")
	}
}

// SQLitePath returns the path to the relational database.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "social_media.db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Phase {
	case PhaseAll, PhaseLoad, PhaseBench:
		// Valid phases
	default:
		return fmt.Errorf("invalid phase: %s (must be all, load, or bench)", c.Phase)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Phase != PhaseBench && c.CSVPath == "" {
		return fmt.Errorf("csv_path is required for the load phase")
	}

	switch c.KeyMode {
	case "sequential", "hashed":
	default:
		return fmt.Errorf("invalid key_mode: %s (must be sequential or hashed)", c.KeyMode)
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if c.Colstore.FlushThreshold < 0 {
		return fmt.Errorf("colstore.flush_threshold must not be negative, got %d", c.Colstore.FlushThreshold)
	}

	return nil
}

// ShouldLoad returns true if the load phase should run.
func (c *Config) ShouldLoad() bool {
	return c.Phase == PhaseAll || c.Phase == PhaseLoad
}

// ShouldBench returns true if the benchmark phase should run.
func (c *Config) ShouldBench() bool {
	return c.Phase == PhaseAll || c.Phase == PhaseBench
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the ENGAGEMARK_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("ENGAGEMARK_PHASE"); v != "" {
		cfg.Phase = Phase(v)
	}
	if v := os.Getenv("ENGAGEMARK_CSV_PATH"); v != "" {
		cfg.CSVPath = v
	}
	if v := os.Getenv("ENGAGEMARK_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ENGAGEMARK_KEY_MODE"); v != "" {
		cfg.KeyMode = v
	}

	// Loader configuration
	if v := os.Getenv("ENGAGEMARK_LOADER_BATCH_SIZE"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Loader.BatchSize)
	}
	if v := os.Getenv("ENGAGEMARK_LOADER_WORKERS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Loader.Workers)
	}

	// Colstore configuration
	if v := os.Getenv("ENGAGEMARK_COLSTORE_FLUSH_THRESHOLD"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Colstore.FlushThreshold)
	}

	// Bench configuration
	if v := os.Getenv("ENGAGEMARK_BENCH_SCAN_LIMIT"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Bench.ScanLimit)
	}

	// Report configuration
	if v := os.Getenv("ENGAGEMARK_REPORT_OUT_DIR"); v != "" {
		cfg.Report.OutDir = v
	}
	if v := os.Getenv("ENGAGEMARK_REPORT_UPLOAD"); v != "" {
		cfg.Report.Upload = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv("ENGAGEMARK_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("ENGAGEMARK_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("ENGAGEMARK_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("ENGAGEMARK_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("ENGAGEMARK_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.Storage.Path,
		c.Report.OutDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
