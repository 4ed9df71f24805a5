// Package report assembles the outcome of a run (load statistics and
// benchmark timings for both backends) and writes it out as JSON files and
// SVG comparison charts, optionally uploading the lot to object storage.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/engagemark/engagemark/internal/bench"
	"github.com/engagemark/engagemark/internal/errors"
	"github.com/engagemark/engagemark/internal/loader"
	"github.com/engagemark/engagemark/internal/storage"
)

// Output file names.
const (
	BenchmarkResultsFile = "benchmark_results.json"
	ColstoreLoadFile     = "colstore_load_report.json"
	SQLiteLoadFile       = "sqlite_load_report.json"
	RunReportFile        = "run_report.json"
	LoadChartFile        = "load_comparison.svg"
	BenchChartFile       = "benchmark_comparison.svg"
)

// Backend names used as JSON keys in benchmark results.
const (
	BackendColstore = "colstore"
	BackendSQLite   = "sqlite"
)

// BackendOutcome holds one backend's load stats and benchmark timings.
type BackendOutcome struct {
	Load    *loader.Stats `json:"load,omitempty"`
	Bench   bench.Results `json:"benchmark,omitempty"`
	Records int           `json:"records"`
}

// Report is the full outcome of one run.
type Report struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	KeyMode     string         `json:"key_mode"`
	ColumnStore BackendOutcome `json:"colstore"`
	SQLStore    BackendOutcome `json:"sqlite"`
}

// New creates a report with a fresh run ID.
func New(keyMode string) *Report {
	return &Report{
		RunID:       uuid.New().String()[:8],
		GeneratedAt: time.Now().UTC(),
		KeyMode:     keyMode,
	}
}

// Write renders all report artifacts into dir and returns the written
// paths. Partial results are fine: sections that were never filled are
// skipped rather than failing the whole report.
func (r *Report) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewReportError(errors.CodeRenderFailed, "failed to create output directory", err)
	}

	var written []string

	write := func(name string, data []byte) error {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.NewReportError(errors.CodeRenderFailed, fmt.Sprintf("failed to write %s", name), err)
		}
		written = append(written, path)
		return nil
	}

	writeJSON := func(name string, v interface{}) error {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.NewReportError(errors.CodeRenderFailed, fmt.Sprintf("failed to marshal %s", name), err)
		}
		return write(name, data)
	}

	if err := writeJSON(RunReportFile, r); err != nil {
		return written, err
	}

	if r.ColumnStore.Bench != nil || r.SQLStore.Bench != nil {
		benchResults := map[string]bench.Results{}
		if r.SQLStore.Bench != nil {
			benchResults[BackendSQLite] = r.SQLStore.Bench
		}
		if r.ColumnStore.Bench != nil {
			benchResults[BackendColstore] = r.ColumnStore.Bench
		}
		if err := writeJSON(BenchmarkResultsFile, benchResults); err != nil {
			return written, err
		}
		if err := write(BenchChartFile, r.benchChartSVG()); err != nil {
			return written, err
		}
	}

	if r.ColumnStore.Load != nil {
		if err := writeJSON(ColstoreLoadFile, r.ColumnStore.Load); err != nil {
			return written, err
		}
	}
	if r.SQLStore.Load != nil {
		if err := writeJSON(SQLiteLoadFile, r.SQLStore.Load); err != nil {
			return written, err
		}
	}
	if r.ColumnStore.Load != nil && r.SQLStore.Load != nil {
		if err := write(LoadChartFile, r.loadChartSVG()); err != nil {
			return written, err
		}
	}

	return written, nil
}

// Upload pushes previously written report files to object storage under
// reports/<runID>/.
func (r *Report) Upload(ctx context.Context, objects storage.ObjectStorage, paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.NewReportError(errors.CodeUploadFailed, fmt.Sprintf("failed to read %s", path), err)
		}
		objectPath := fmt.Sprintf("reports/%s/%s", r.RunID, filepath.Base(path))
		if err := objects.Put(ctx, objectPath, data); err != nil {
			return errors.NewReportError(errors.CodeUploadFailed, fmt.Sprintf("failed to upload %s", objectPath), err)
		}
	}
	return nil
}
