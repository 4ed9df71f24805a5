package types

import "strings"

// Column families used by the wide-column backend. Families are a closed
// set; the family is carried as a prefix on the qualified column name
// ("cf:platform", "metrics:likes").
const (
	// FamilyBase holds descriptive post and audience attributes.
	FamilyBase = "cf"

	// FamilyMetrics holds numeric engagement counters and rates.
	FamilyMetrics = "metrics"
)

// ShapedRecord is the output of shaping one SourceRow: a row key plus a
// mapping from qualified column name to normalized string value. A
// ShapedRecord is handed to a storage sink immediately after creation and
// never mutated.
type ShapedRecord struct {
	// Key is the derived row identifier. Non-empty for every shaped row.
	Key string `json:"key"`

	// Columns maps "family:qualifier" to the normalized value. Text fields
	// whose cleaned value was empty or a sentinel are absent; numeric fields
	// are always present (zero-filled on absent/unparsable input).
	Columns map[string]string `json:"columns"`
}

// Qualify builds a qualified column name from family and qualifier.
func Qualify(family, qualifier string) string {
	return family + ":" + qualifier
}

// SplitColumn splits a qualified column name into family and qualifier.
// The qualifier is empty when the name carries no family separator.
func SplitColumn(column string) (family, qualifier string) {
	if i := strings.IndexByte(column, ':'); i >= 0 {
		return column[:i], column[i+1:]
	}
	return column, ""
}
