// Package loader drives the load phase: it streams source rows, shapes
// them, and distributes batches of shaped records across a bounded pool of
// sink writers. Batches carry no ordering guarantee between workers; each
// worker owns the batches it receives exclusively.
package loader

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/engagemark/engagemark/internal/shaper"
	"github.com/engagemark/engagemark/pkg/types"
)

// Sink accepts batches of shaped records. Both storage backends satisfy it.
type Sink interface {
	WriteBatch(ctx context.Context, records []types.ShapedRecord) error
}

// RowSource produces SourceRows in file order. Next returns io.EOF after
// the last row.
type RowSource interface {
	Next() (types.SourceRow, error)
}

// Config controls the load worker pool.
type Config struct {
	// BatchSize is the number of shaped records per sink write.
	BatchSize int
	// Workers is the number of concurrent sink writers.
	Workers int
	// QueueDepth bounds the batch queue between the reader and workers.
	QueueDepth int
	// ProgressEvery logs a progress line every N batches. 0 disables.
	ProgressEvery int
}

// DefaultConfig returns the default load configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:     2000,
		Workers:       3,
		QueueDepth:    8,
		ProgressEvery: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = d.QueueDepth
	}
	return c
}

// Stats summarizes one load run. Field names match the report format.
type Stats struct {
	LoadTime          float64 `json:"load_time"`
	RecordsPerSecond  float64 `json:"records_per_second"`
	TotalRecords      int64   `json:"total_records"`
	SuccessfulRecords int64   `json:"successful_records"`
	SkippedRecords    int64   `json:"skipped_records"`
	SuccessRate       float64 `json:"success_rate"`
	Batches           int64   `json:"batches"`
}

// Loader shapes rows and writes them to a sink through the worker pool.
type Loader struct {
	shaper *shaper.Shaper
	cfg    Config
}

// New creates a Loader.
func New(sh *shaper.Shaper, cfg Config) *Loader {
	return &Loader{shaper: sh, cfg: cfg.withDefaults()}
}

// Run streams src to completion. The reader assigns the monotonic counter
// in row order before batches fan out, so sequential keys stay injective
// regardless of worker interleaving. Rows that shape to an empty column map
// are counted as skipped and not written.
func (l *Loader) Run(ctx context.Context, src RowSource, sink Sink) (*Stats, error) {
	start := time.Now()

	var total, successful, skipped, batchCount int64

	batches := make(chan []types.ShapedRecord, l.cfg.QueueDepth)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < l.cfg.Workers; i++ {
		g.Go(func() error {
			for batch := range batches {
				if err := sink.WriteBatch(ctx, batch); err != nil {
					return err
				}
				written := atomic.AddInt64(&successful, int64(len(batch)))
				n := atomic.AddInt64(&batchCount, 1)
				if l.cfg.ProgressEvery > 0 && n%int64(l.cfg.ProgressEvery) == 0 {
					log.Printf("loader: %d batches written (%d records)", n, written)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(batches)

		batch := make([]types.ShapedRecord, 0, l.cfg.BatchSize)
		counter := 0
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := src.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return err
			}
			total++

			rec := l.shaper.Shape(row, counter)
			counter++

			if len(rec.Columns) == 0 {
				skipped++
				continue
			}

			batch = append(batch, rec)
			if len(batch) >= l.cfg.BatchSize {
				select {
				case batches <- batch:
				case <-ctx.Done():
					return ctx.Err()
				}
				batch = make([]types.ShapedRecord, 0, l.cfg.BatchSize)
			}
		}

		if len(batch) > 0 {
			select {
			case batches <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start).Seconds()
	stats := &Stats{
		LoadTime:          elapsed,
		TotalRecords:      total,
		SuccessfulRecords: successful,
		SkippedRecords:    skipped,
		Batches:           batchCount,
	}
	if elapsed > 0 {
		stats.RecordsPerSecond = float64(successful) / elapsed
	}
	if total > 0 {
		stats.SuccessRate = float64(successful) / float64(total) * 100
	}

	log.Printf("loader: done, %d/%d records in %.2fs (%.1f rec/s)",
		successful, total, elapsed, stats.RecordsPerSecond)
	return stats, nil
}
