// Package shaper converts flat CSV rows of the engagement dataset into
// wide-column records: a row key plus a mapping from qualified column name
// to normalized value. Shaping is a pure, stateless transform; the only
// cross-row input is the externally supplied monotonic counter, so a single
// Shaper is safe to use from any number of goroutines.
//
// Shaping never fails. Every malformed input degrades to a documented
// default (missing platform, unparsable numbers, bad timestamps), which lets
// the surrounding load loop process an entire file without per-row error
// handling.
package shaper

import (
	"fmt"
	"strings"

	"github.com/engagemark/engagemark/pkg/types"
)

// Shaper holds a validated field spec and a key mode.
type Shaper struct {
	spec types.FieldSpec
	mode KeyMode
}

// New creates a Shaper. The field spec is validated once here; Shape and
// ShapeColumns then run without any per-access checks.
func New(spec types.FieldSpec, mode KeyMode) (*Shaper, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("shaper: invalid field spec: %w", err)
	}
	switch mode {
	case KeyModeSequential, KeyModeHashed:
	default:
		return nil, fmt.Errorf("shaper: invalid key mode %q", mode)
	}
	return &Shaper{spec: spec, mode: mode}, nil
}

// Mode returns the configured key mode.
func (s *Shaper) Mode() KeyMode {
	return s.mode
}

// Shape produces the full shaped record for one row.
func (s *Shaper) Shape(row types.SourceRow, counter int) types.ShapedRecord {
	return types.ShapedRecord{
		Key:     s.MakeKey(row, counter),
		Columns: s.ShapeColumns(row),
	}
}

// ShapeColumns walks the field spec and emits the normalized column map.
// Text fields whose cleaned value is empty or a sentinel are omitted;
// numeric fields are zero-filled instead. Absent numeric metrics mean zero
// activity, absent text means unknown.
func (s *Shaper) ShapeColumns(row types.SourceRow) map[string]string {
	columns := make(map[string]string, len(s.spec))

	for _, def := range s.spec {
		raw := strings.TrimSpace(row.Get(def.Source))

		if isSentinel(raw) {
			switch def.Kind {
			case types.KindInteger:
				columns[def.Column] = "0"
			case types.KindDecimal:
				columns[def.Column] = formatDecimal(0, def.Precision)
			}
			continue
		}

		switch def.Kind {
		case types.KindText:
			columns[def.Column] = truncate(raw, def.MaxLen)
		case types.KindInteger:
			columns[def.Column] = coerceInteger(raw)
		case types.KindDecimal:
			columns[def.Column] = coerceDecimal(raw, def.Precision)
		}
	}

	return columns
}

// truncate limits s to max characters (runes, not bytes).
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
