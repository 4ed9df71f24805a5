package shaper

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/engagemark/engagemark/pkg/types"
)

// KeyMode selects the row key derivation scheme.
type KeyMode string

const (
	// KeyModeSequential composes "{platform}_{postID}_{counter:08d}".
	// Injective within a load run because the counter is strictly
	// increasing, regardless of row content.
	KeyModeSequential KeyMode = "sequential"

	// KeyModeHashed composes "{YYYYMMDD}_{platform}_{digest}", where the
	// date comes from the post timestamp and the digest is a content hash
	// of platform and post ID. Keys sort chronologically by day and the
	// hash suffix spreads writes across a date/platform pair, but two rows
	// with the same platform and post ID produce the same key and overwrite
	// each other in an overwrite-by-key store. Accepted tradeoff.
	KeyModeHashed KeyMode = "hashed"
)

// ParseKeyMode converts a config string to a KeyMode.
func ParseKeyMode(s string) (KeyMode, error) {
	switch KeyMode(strings.ToLower(strings.TrimSpace(s))) {
	case KeyModeSequential:
		return KeyModeSequential, nil
	case KeyModeHashed:
		return KeyModeHashed, nil
	default:
		return "", fmt.Errorf("shaper: invalid key mode %q (must be sequential or hashed)", s)
	}
}

const (
	defaultPlatform = "unknown"
	platformKeyLen  = 10
	postIDKeyLen    = 8
	digestHexLen    = 8

	// Layout of the dataset's post timestamps.
	timestampLayout = "2006-01-02 15:04:05"
)

// fallbackKeyDate is used when the post timestamp does not parse.
var fallbackKeyDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// MakeKey derives the row key for one record. It never fails: a missing or
// empty platform degrades to "unknown" and an unparsable timestamp degrades
// to the fallback date.
func (s *Shaper) MakeKey(row types.SourceRow, counter int) string {
	platform := strings.TrimSpace(row.Get(types.FieldPlatform))
	if platform == "" {
		platform = defaultPlatform
	}
	postID := strings.TrimSpace(row.Get(types.FieldPostID))

	if s.mode == KeyModeHashed {
		return hashedKey(platform, postID, row.Get(types.FieldPostTimestamp))
	}
	return sequentialKey(platform, postID, counter)
}

func sequentialKey(platform, postID string, counter int) string {
	return fmt.Sprintf("%s_%s_%08d",
		truncate(platform, platformKeyLen),
		truncate(postID, postIDKeyLen),
		counter)
}

func hashedKey(platform, postID, rawTimestamp string) string {
	day := fallbackKeyDate
	if t, err := time.Parse(timestampLayout, strings.TrimSpace(rawTimestamp)); err == nil {
		day = t
	}

	sum := md5.Sum([]byte(platform + "_" + postID))
	digest := hex.EncodeToString(sum[:])[:digestHexLen]

	return fmt.Sprintf("%s_%s_%s",
		day.Format("20060102"),
		truncate(platform, platformKeyLen),
		digest)
}
