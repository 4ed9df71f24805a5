// Package bench runs the fixed battery of timed read, aggregation, and
// query operations against both storage backends. The relational side
// executes SQL; the wide-column side evaluates the same predicates
// client-side over scans, the way a thrift-gateway client would. Each
// operation is timed with a wall-clock delta and reported in seconds
// rounded to four decimals.
package bench

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/engagemark/engagemark/internal/colstore"
	"github.com/engagemark/engagemark/internal/errors"
	"github.com/engagemark/engagemark/internal/sqlstore"
	"github.com/engagemark/engagemark/pkg/types"
)

// Operation keys in Results. These names are the report contract.
const (
	OpRead                = "read_time"
	OpAggregation         = "aggregation_time"
	OpQuery               = "query_time"
	OpFilteredRead        = "filtered_read_time"
	OpRangeAggregation    = "range_aggregation_time"
	OpTopN                = "top_n_time"
	OpCombinedAggregation = "combined_aggregation_time"
	OpCountNegative       = "count_negative_sentiment_time"
)

// Operations lists the battery in execution order.
var Operations = []string{
	OpRead,
	OpAggregation,
	OpQuery,
	OpFilteredRead,
	OpRangeAggregation,
	OpTopN,
	OpCombinedAggregation,
	OpCountNegative,
}

// Params holds the battery's fixed thresholds.
type Params struct {
	// ScanLimit bounds column store scans per operation.
	ScanLimit int `yaml:"scan_limit" json:"scan_limit"`
	// HighLikes is the likes floor for the query operation.
	HighLikes int `yaml:"high_likes" json:"high_likes"`
	// RangeLo and RangeHi bound the filtered read likes range.
	RangeLo int `yaml:"range_lo" json:"range_lo"`
	RangeHi int `yaml:"range_hi" json:"range_hi"`
	// Gender is the audience filter for the filtered read.
	Gender string `yaml:"gender" json:"gender"`
	// TimestampFloor is the lexical lower bound for the range aggregation.
	TimestampFloor string `yaml:"timestamp_floor" json:"timestamp_floor"`
	// TopN is the ranking size for the top-N operation.
	TopN int `yaml:"top_n" json:"top_n"`
}

// DefaultParams returns the standard battery thresholds.
func DefaultParams() Params {
	return Params{
		ScanLimit:      1000,
		HighLikes:      800,
		RangeLo:        500,
		RangeHi:        1000,
		Gender:         "Male",
		TimestampFloor: "30:00.0",
		TopN:           5,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.ScanLimit <= 0 {
		p.ScanLimit = d.ScanLimit
	}
	if p.HighLikes <= 0 {
		p.HighLikes = d.HighLikes
	}
	if p.RangeHi <= 0 {
		p.RangeLo, p.RangeHi = d.RangeLo, d.RangeHi
	}
	if p.Gender == "" {
		p.Gender = d.Gender
	}
	if p.TimestampFloor == "" {
		p.TimestampFloor = d.TimestampFloor
	}
	if p.TopN <= 0 {
		p.TopN = d.TopN
	}
	return p
}

// Results maps operation key to elapsed seconds, rounded to 4 decimals.
type Results map[string]float64

// RunSQLStore executes the battery against the relational store.
func RunSQLStore(ctx context.Context, store *sqlstore.Store, p Params) (Results, error) {
	p = p.withDefaults()

	count, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errors.NewBenchmarkError(errors.CodeStoreEmpty, "relational store has no rows to benchmark")
	}

	results := make(Results, len(Operations))

	ops := []struct {
		name string
		run  func() error
	}{
		{OpRead, func() error {
			_, err := store.ReadRows(ctx, p.ScanLimit)
			return err
		}},
		{OpAggregation, func() error {
			_, err := store.AvgLikesByPlatform(ctx)
			return err
		}},
		{OpQuery, func() error {
			_, err := store.HighLikesWithSentiment(ctx, p.HighLikes, "Positive")
			return err
		}},
		{OpFilteredRead, func() error {
			_, err := store.LikesRangeWithGender(ctx, p.RangeLo, p.RangeHi, p.Gender)
			return err
		}},
		{OpRangeAggregation, func() error {
			_, err := store.AvgRateAfterTimestamp(ctx, p.TimestampFloor)
			return err
		}},
		{OpTopN, func() error {
			_, err := store.TopPostsByLikes(ctx, p.TopN)
			return err
		}},
		{OpCombinedAggregation, func() error {
			_, err := store.PlatformTotals(ctx)
			return err
		}},
		{OpCountNegative, func() error {
			_, err := store.CountBySentiment(ctx, "Negative")
			return err
		}},
	}

	for _, op := range ops {
		elapsed, err := timeOp(op.run)
		if err != nil {
			return nil, err
		}
		results[op.name] = elapsed
	}
	return results, nil
}

// RunColumnStore executes the battery against the wide-column store. Every
// operation performs its own limited scan, matching a client that re-reads
// per query.
func RunColumnStore(ctx context.Context, store *colstore.Store, p Params) (Results, error) {
	p = p.withDefaults()

	if store.Count() == 0 {
		return nil, errors.NewBenchmarkError(errors.CodeStoreEmpty, "column store has no rows to benchmark")
	}

	results := make(Results, len(Operations))

	ops := []struct {
		name string
		run  func([]types.ShapedRecord)
	}{
		{OpRead, func(records []types.ShapedRecord) {
			// Scan itself is the operation.
		}},
		{OpAggregation, func(records []types.ShapedRecord) {
			avgLikesByPlatform(records)
		}},
		{OpQuery, func(records []types.ShapedRecord) {
			for _, rec := range records {
				likes := colInt(rec, "metrics:likes")
				sentiment := strings.ToLower(colText(rec, "cf:sentiment", ""))
				if likes > p.HighLikes && sentiment == "positive" {
					_ = rec
				}
			}
		}},
		{OpFilteredRead, func(records []types.ShapedRecord) {
			for _, rec := range records {
				likes := colInt(rec, "metrics:likes")
				gender := colText(rec, "cf:audience_gender", "")
				if likes >= p.RangeLo && likes <= p.RangeHi && gender == p.Gender {
					_ = rec
				}
			}
		}},
		{OpRangeAggregation, func(records []types.ShapedRecord) {
			var sum float64
			var n int
			for _, rec := range records {
				if colText(rec, "cf:post_timestamp", "00:00.0") > p.TimestampFloor {
					sum += colFloat(rec, "metrics:engagement_rate")
					n++
				}
			}
			if n > 0 {
				_ = sum / float64(n)
			}
		}},
		{OpTopN, func(records []types.ShapedRecord) {
			topPostsByLikes(records, p.TopN)
		}},
		{OpCombinedAggregation, func(records []types.ShapedRecord) {
			platformTotals(records)
		}},
		{OpCountNegative, func(records []types.ShapedRecord) {
			count := 0
			for _, rec := range records {
				if strings.ToLower(colText(rec, "cf:sentiment", "")) == "negative" {
					count++
				}
			}
			_ = count
		}},
	}

	for _, op := range ops {
		var records []types.ShapedRecord
		elapsed, err := timeOp(func() error {
			var scanErr error
			records, scanErr = store.Scan(ctx, p.ScanLimit)
			if scanErr != nil {
				return scanErr
			}
			op.run(records)
			return nil
		})
		if err != nil {
			return nil, err
		}
		results[op.name] = elapsed
	}
	return results, nil
}

func avgLikesByPlatform(records []types.ShapedRecord) map[string]float64 {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, rec := range records {
		platform := colText(rec, "cf:platform", "unknown")
		sums[platform] += colInt(rec, "metrics:likes")
		counts[platform]++
	}
	avgs := make(map[string]float64, len(sums))
	for platform, sum := range sums {
		avgs[platform] = float64(sum) / float64(counts[platform])
	}
	return avgs
}

func topPostsByLikes(records []types.ShapedRecord, n int) []types.ShapedRecord {
	ranked := make([]types.ShapedRecord, len(records))
	copy(ranked, records)
	sort.Slice(ranked, func(i, j int) bool {
		return colInt(ranked[i], "metrics:likes") > colInt(ranked[j], "metrics:likes")
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

type platformTotal struct {
	totalLikes int
	rateSum    float64
	count      int
}

func platformTotals(records []types.ShapedRecord) map[string]platformTotal {
	totals := make(map[string]platformTotal)
	for _, rec := range records {
		platform := colText(rec, "cf:platform", "unknown")
		t := totals[platform]
		t.totalLikes += colInt(rec, "metrics:likes")
		t.rateSum += colFloat(rec, "metrics:engagement_rate")
		t.count++
		totals[platform] = t
	}
	return totals
}

func colText(rec types.ShapedRecord, column, fallback string) string {
	if v, ok := rec.Columns[column]; ok {
		return v
	}
	return fallback
}

func colInt(rec types.ShapedRecord, column string) int {
	v, ok := rec.Columns[column]
	if !ok {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func colFloat(rec types.ShapedRecord, column string) float64 {
	f, err := strconv.ParseFloat(rec.Columns[column], 64)
	if err != nil {
		return 0
	}
	return f
}

// timeOp runs op and returns the elapsed wall-clock seconds at 4 decimals.
func timeOp(op func() error) (float64, error) {
	start := time.Now()
	if err := op(); err != nil {
		return 0, err
	}
	return round4(time.Since(start).Seconds()), nil
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
