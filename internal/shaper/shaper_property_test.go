package shaper

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/engagemark/engagemark/pkg/types"
)

func genRow() gopter.Gen {
	return gopter.CombineGens(
		gen.AlphaString(),
		gen.AlphaString(),
		gen.OneConstOf("", "nan", "None", "150", "3.7", "-12", "junk", "1e3"),
		gen.OneConstOf("", "2024-03-15 10:30:00", "not a date", "1999-12-31 23:59:59"),
	).Map(func(vals []interface{}) types.SourceRow {
		return types.SourceRow{
			types.FieldPlatform:      vals[0].(string),
			types.FieldPostID:        vals[1].(string),
			types.FieldLikes:         vals[2].(string),
			types.FieldPostTimestamp: vals[3].(string),
		}
	})
}

func TestShaperProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	seq, err := New(types.EngagementFieldSpec(), KeyModeSequential)
	if err != nil {
		t.Fatal(err)
	}
	hashed, err := New(types.EngagementFieldSpec(), KeyModeHashed)
	if err != nil {
		t.Fatal(err)
	}

	properties := gopter.NewProperties(parameters)

	properties.Property("sequential keys differ across counters", prop.ForAll(
		func(row types.SourceRow, a, b int) bool {
			if a == b {
				return true
			}
			return seq.MakeKey(row, a) != seq.MakeKey(row, b)
		},
		genRow(),
		gen.IntRange(0, 99999999),
		gen.IntRange(0, 99999999),
	))

	properties.Property("sequential key ends with zero-padded counter", prop.ForAll(
		func(row types.SourceRow, counter int) bool {
			key := seq.MakeKey(row, counter)
			idx := strings.LastIndex(key, "_")
			return idx >= 0 && len(key[idx+1:]) == 8
		},
		genRow(),
		gen.IntRange(0, 99999999),
	))

	properties.Property("hashed key ignores the counter", prop.ForAll(
		func(row types.SourceRow, a, b int) bool {
			return hashed.MakeKey(row, a) == hashed.MakeKey(row, b)
		},
		genRow(),
		gen.IntRange(0, 99999999),
		gen.IntRange(0, 99999999),
	))

	properties.Property("keys are never empty and contain no spaces", prop.ForAll(
		func(row types.SourceRow, counter int) bool {
			for _, key := range []string{seq.MakeKey(row, counter), hashed.MakeKey(row, counter)} {
				if key == "" || strings.ContainsAny(key, " \t\n") {
					return false
				}
			}
			return true
		},
		genRow(),
		gen.IntRange(0, 99999999),
	))

	properties.Property("shaping is deterministic", prop.ForAll(
		func(row types.SourceRow, counter int) bool {
			first := seq.Shape(row, counter)
			second := seq.Shape(row, counter)
			if first.Key != second.Key || len(first.Columns) != len(second.Columns) {
				return false
			}
			for column, value := range first.Columns {
				if second.Columns[column] != value {
					return false
				}
			}
			return true
		},
		genRow(),
		gen.IntRange(0, 99999999),
	))

	properties.Property("numeric columns are always present", prop.ForAll(
		func(row types.SourceRow) bool {
			columns := seq.ShapeColumns(row)
			for _, column := range []string{
				"metrics:likes", "metrics:comments", "metrics:shares",
				"metrics:impressions", "metrics:reach", "metrics:engagement_rate",
				"cf:audience_age",
			} {
				if _, ok := columns[column]; !ok {
					return false
				}
			}
			return true
		},
		genRow(),
	))

	properties.Property("text values respect their budgets", prop.ForAll(
		func(content string) bool {
			columns := seq.ShapeColumns(types.SourceRow{types.FieldPostContent: content})
			value, ok := columns["cf:post_content"]
			if !ok {
				return true
			}
			return len([]rune(value)) <= types.MaxContentLen
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
