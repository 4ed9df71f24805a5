// Package app wires configuration, storage, both backends, the loader and
// the benchmark battery into a single run.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/engagemark/engagemark/internal/bench"
	"github.com/engagemark/engagemark/internal/colstore"
	"github.com/engagemark/engagemark/internal/config"
	"github.com/engagemark/engagemark/internal/csvdata"
	"github.com/engagemark/engagemark/internal/loader"
	"github.com/engagemark/engagemark/internal/report"
	"github.com/engagemark/engagemark/internal/shaper"
	"github.com/engagemark/engagemark/internal/sqlstore"
	"github.com/engagemark/engagemark/internal/storage"
	"github.com/engagemark/engagemark/pkg/types"
)

// App manages the resources of one engagemark run.
type App struct {
	cfg *config.Config

	// Shared resources
	objects  storage.ObjectStorage
	colstore *colstore.Store
	sqlstore *sqlstore.Store
	shaper   *shaper.Shaper
}

// New creates an App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	mode, err := shaper.ParseKeyMode(cfg.KeyMode)
	if err != nil {
		return nil, err
	}
	sh, err := shaper.New(types.EngagementFieldSpec(), mode)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:    cfg,
		shaper: sh,
	}, nil
}

// Run executes the configured phases and writes the run report.
func (a *App) Run(ctx context.Context) error {
	if err := a.initStores(ctx); err != nil {
		return err
	}
	defer a.close()

	rep := report.New(a.cfg.KeyMode)

	if a.cfg.ShouldLoad() {
		if err := a.runLoadPhase(ctx, rep); err != nil {
			return err
		}
	}

	if a.cfg.ShouldBench() {
		if err := a.runBenchPhase(ctx, rep); err != nil {
			return err
		}
	}

	paths, err := rep.Write(a.cfg.Report.OutDir)
	if err != nil {
		return err
	}
	log.Printf("Report written: %d files in %s", len(paths), a.cfg.Report.OutDir)

	if a.cfg.Report.Upload {
		if err := rep.Upload(ctx, a.objects, paths); err != nil {
			return err
		}
		log.Printf("Report uploaded: reports/%s/", rep.RunID)
	}

	return nil
}

// initStores builds object storage and opens both backends.
func (a *App) initStores(ctx context.Context) error {
	var err error

	switch a.cfg.Storage.Type {
	case "local":
		a.objects, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case "s3":
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		if a.cfg.Storage.S3.Endpoint != "" {
			s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		}
		a.objects, err = storage.NewS3Storage(ctx, a.cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)

	a.colstore, err = colstore.Open(ctx, a.objects, a.cfg.Colstore.FlushThreshold)
	if err != nil {
		return fmt.Errorf("failed to open column store: %w", err)
	}
	log.Printf("Column store opened: %d records in %d segments",
		a.colstore.Count(), a.colstore.SegmentCount())

	a.sqlstore, err = sqlstore.Open(a.cfg.SQLitePath())
	if err != nil {
		return fmt.Errorf("failed to open relational store: %w", err)
	}
	log.Printf("Relational store opened: %s", a.cfg.SQLitePath())

	return nil
}

// runLoadPhase shapes the CSV into both backends, one pass per backend so
// each gets identical rows and counters. The CSV reader is not restartable
// mid-stream, so the file is reopened for the second pass.
func (a *App) runLoadPhase(ctx context.Context, rep *report.Report) error {
	ld := loader.New(a.shaper, a.cfg.Loader)

	colStats, err := a.loadInto(ctx, ld, "colstore", a.colstore)
	if err != nil {
		return err
	}
	if err := a.colstore.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush column store: %w", err)
	}
	rep.ColumnStore.Load = colStats
	rep.ColumnStore.Records = a.colstore.Count()

	sqlStats, err := a.loadInto(ctx, ld, "sqlite", a.sqlstore)
	if err != nil {
		return err
	}
	rep.SQLStore.Load = sqlStats
	count, err := a.sqlstore.Count(ctx)
	if err != nil {
		return err
	}
	rep.SQLStore.Records = count

	return nil
}

func (a *App) loadInto(ctx context.Context, ld *loader.Loader, name string, sink loader.Sink) (*loader.Stats, error) {
	src, err := csvdata.Open(a.cfg.CSVPath)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	log.Printf("Loading %s from %s", name, a.cfg.CSVPath)
	stats, err := ld.Run(ctx, src, sink)
	if err != nil {
		return nil, fmt.Errorf("%s load failed: %w", name, err)
	}
	return stats, nil
}

// runBenchPhase runs the benchmark battery against both backends.
func (a *App) runBenchPhase(ctx context.Context, rep *report.Report) error {
	log.Printf("Benchmarking column store")
	colResults, err := bench.RunColumnStore(ctx, a.colstore, a.cfg.Bench)
	if err != nil {
		return err
	}
	rep.ColumnStore.Bench = colResults
	rep.ColumnStore.Records = a.colstore.Count()

	log.Printf("Benchmarking relational store")
	sqlResults, err := bench.RunSQLStore(ctx, a.sqlstore, a.cfg.Bench)
	if err != nil {
		return err
	}
	rep.SQLStore.Bench = sqlResults
	count, err := a.sqlstore.Count(ctx)
	if err != nil {
		return err
	}
	rep.SQLStore.Records = count

	return nil
}

// close releases both backends.
func (a *App) close() {
	if a.colstore != nil {
		if err := a.colstore.Close(context.Background()); err != nil {
			log.Printf("Column store close error: %v", err)
		}
	}
	if a.sqlstore != nil {
		if err := a.sqlstore.Close(); err != nil {
			log.Printf("Relational store close error: %v", err)
		}
	}
}
