// Package types provides core data types for engagemark.
package types

// SourceRow is a single CSV record: a mapping from header name to the raw
// cell value exactly as it appeared in the file. Values may be empty or
// sentinel strings ("nan", "none", "null"); normalization is the shaper's
// job, not the reader's.
type SourceRow map[string]string

// Canonical headers of the social media engagement dataset. Unknown extra
// headers in an input file are carried in the SourceRow but ignored by the
// shaper.
const (
	FieldPlatform          = "Platform"
	FieldPostID            = "Post ID"
	FieldPostType          = "Post Type"
	FieldPostContent       = "Post Content"
	FieldPostTimestamp     = "Post Timestamp"
	FieldLikes             = "Likes"
	FieldComments          = "Comments"
	FieldShares            = "Shares"
	FieldImpressions       = "Impressions"
	FieldReach             = "Reach"
	FieldEngagementRate    = "Engagement Rate"
	FieldAudienceAge       = "Audience Age"
	FieldAudienceGender    = "Audience Gender"
	FieldAudienceLocation  = "Audience Location"
	FieldAudienceInterests = "Audience Interests"
	FieldCampaignID        = "Campaign ID"
	FieldSentiment         = "Sentiment"
	FieldInfluencerID      = "Influencer ID"
)

// Get returns the raw value for a header, or "" when the header is absent.
func (r SourceRow) Get(field string) string {
	return r[field]
}
