package types

import "fmt"

// FieldKind classifies how a source field is normalized before storage.
type FieldKind int

const (
	// KindText trims and truncates to MaxLen characters; sentinel values
	// are omitted from the output entirely.
	KindText FieldKind = iota

	// KindInteger coerces to an integer string when the parsed value is a
	// whole number within 32-bit signed range, otherwise to a
	// 2-decimal-rounded float string. Absent or unparsable input becomes "0".
	KindInteger

	// KindDecimal coerces to a float string rounded to Precision digits.
	// Absent or unparsable input becomes zero at the same precision.
	KindDecimal
)

// String returns the kind name for diagnostics.
func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// FieldDef maps one source field to one target column.
type FieldDef struct {
	// Source is the CSV header the value is read from.
	Source string

	// Column is the qualified target column name ("family:qualifier").
	Column string

	// Kind selects the normalization rule.
	Kind FieldKind

	// MaxLen is the character budget for KindText fields.
	MaxLen int

	// Precision is the number of decimal digits for KindDecimal fields.
	Precision int
}

// FieldSpec is the fixed table driving column shaping. It is validated once
// at shaper construction so every later row access is a plain table walk
// with no ad-hoc defaulting.
type FieldSpec []FieldDef

// Validate checks the spec for structural problems: empty names, malformed
// or duplicate target columns, unknown families, and missing kind
// parameters.
func (s FieldSpec) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("field spec is empty")
	}

	seenColumns := make(map[string]string, len(s))
	for i, def := range s {
		if def.Source == "" {
			return fmt.Errorf("field %d: source header is empty", i)
		}
		family, qualifier := SplitColumn(def.Column)
		if qualifier == "" {
			return fmt.Errorf("field %q: column %q is not family-qualified", def.Source, def.Column)
		}
		if family != FamilyBase && family != FamilyMetrics {
			return fmt.Errorf("field %q: unknown column family %q", def.Source, family)
		}
		if prev, dup := seenColumns[def.Column]; dup {
			return fmt.Errorf("column %q mapped from both %q and %q", def.Column, prev, def.Source)
		}
		seenColumns[def.Column] = def.Source

		switch def.Kind {
		case KindText:
			if def.MaxLen <= 0 {
				return fmt.Errorf("field %q: text kind requires a positive max length", def.Source)
			}
		case KindInteger:
			// No parameters.
		case KindDecimal:
			if def.Precision < 0 || def.Precision > 8 {
				return fmt.Errorf("field %q: decimal precision %d out of range [0,8]", def.Source, def.Precision)
			}
		default:
			return fmt.Errorf("field %q: unknown kind %v", def.Source, def.Kind)
		}
	}

	return nil
}

// Text truncation budgets, bounding record size in the column store.
const (
	MaxContentLen   = 500
	MaxInterestsLen = 200
	MaxLocationLen  = 100
	MaxTextLen      = 50
)

// EngagementFieldSpec returns the shaping table for the social media
// engagement dataset: descriptive fields in the base family with per-field
// truncation budgets, counters and rates in the metrics family.
func EngagementFieldSpec() FieldSpec {
	return FieldSpec{
		{Source: FieldPlatform, Column: Qualify(FamilyBase, "platform"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldPostID, Column: Qualify(FamilyBase, "post_id"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldPostType, Column: Qualify(FamilyBase, "post_type"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldPostContent, Column: Qualify(FamilyBase, "post_content"), Kind: KindText, MaxLen: MaxContentLen},
		{Source: FieldPostTimestamp, Column: Qualify(FamilyBase, "post_timestamp"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldAudienceAge, Column: Qualify(FamilyBase, "audience_age"), Kind: KindInteger},
		{Source: FieldAudienceGender, Column: Qualify(FamilyBase, "audience_gender"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldAudienceLocation, Column: Qualify(FamilyBase, "audience_location"), Kind: KindText, MaxLen: MaxLocationLen},
		{Source: FieldAudienceInterests, Column: Qualify(FamilyBase, "audience_interests"), Kind: KindText, MaxLen: MaxInterestsLen},
		{Source: FieldCampaignID, Column: Qualify(FamilyBase, "campaign_id"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldSentiment, Column: Qualify(FamilyBase, "sentiment"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldInfluencerID, Column: Qualify(FamilyBase, "influencer_id"), Kind: KindText, MaxLen: MaxTextLen},
		{Source: FieldLikes, Column: Qualify(FamilyMetrics, "likes"), Kind: KindInteger},
		{Source: FieldComments, Column: Qualify(FamilyMetrics, "comments"), Kind: KindInteger},
		{Source: FieldShares, Column: Qualify(FamilyMetrics, "shares"), Kind: KindInteger},
		{Source: FieldImpressions, Column: Qualify(FamilyMetrics, "impressions"), Kind: KindInteger},
		{Source: FieldReach, Column: Qualify(FamilyMetrics, "reach"), Kind: KindInteger},
		{Source: FieldEngagementRate, Column: Qualify(FamilyMetrics, "engagement_rate"), Kind: KindDecimal, Precision: 2},
	}
}
