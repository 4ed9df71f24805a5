package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// The query set below is the relational half of the benchmark battery.
// Each method executes one canned query and fully drains the result, so a
// caller timing the call measures the complete read.

// PlatformAggregate holds per-platform aggregation results.
type PlatformAggregate struct {
	Platform   string
	TotalLikes int64
	AvgRate    float64
}

// PostLikes is one entry of a top-N-by-likes ranking.
type PostLikes struct {
	PostID string
	Likes  int64
}

// ReadRows reads up to limit full rows and returns how many were fetched.
func (s *Store) ReadRows(ctx context.Context, limit int) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s LIMIT ?", TableName), limit)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: read failed: %w", err)
	}
	defer rows.Close()
	return drainRows(rows)
}

// AvgLikesByPlatform computes the average likes per platform.
func (s *Store) AvgLikesByPlatform(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT platform, AVG(likes) FROM %s GROUP BY platform", TableName))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: aggregation failed: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var platform sql.NullString
		var avg sql.NullFloat64
		if err := rows.Scan(&platform, &avg); err != nil {
			return nil, fmt.Errorf("sqlstore: aggregation scan failed: %w", err)
		}
		result[platform.String] = avg.Float64
	}
	return result, rows.Err()
}

// HighLikesWithSentiment counts rows with likes above the threshold and the
// given sentiment.
func (s *Store) HighLikesWithSentiment(ctx context.Context, minLikes int, sentiment string) (int, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT * FROM %s WHERE likes > ? AND sentiment = ?", TableName),
		minLikes, sentiment)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: query failed: %w", err)
	}
	defer rows.Close()
	return drainRows(rows)
}

// LikesRangeWithGender counts rows whose likes fall in [lo, hi] with the
// given audience gender.
func (s *Store) LikesRangeWithGender(ctx context.Context, lo, hi int, gender string) (int, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT * FROM %s WHERE likes BETWEEN ? AND ? AND audience_gender = ?", TableName),
		lo, hi, gender)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: filtered read failed: %w", err)
	}
	defer rows.Close()
	return drainRows(rows)
}

// AvgRateAfterTimestamp averages engagement rate over rows whose raw
// timestamp string sorts above the floor. The comparison is lexical, same
// as the stored text column.
func (s *Store) AvgRateAfterTimestamp(ctx context.Context, floor string) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT AVG(engagement_rate) FROM %s WHERE post_timestamp > ?", TableName),
		floor).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: range aggregation failed: %w", err)
	}
	return avg.Float64, nil
}

// TopPostsByLikes returns the n posts with the most likes.
func (s *Store) TopPostsByLikes(ctx context.Context, n int) ([]PostLikes, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT post_id, likes FROM %s ORDER BY likes DESC LIMIT ?", TableName), n)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: top-n failed: %w", err)
	}
	defer rows.Close()

	var result []PostLikes
	for rows.Next() {
		var postID sql.NullString
		var likes sql.NullInt64
		if err := rows.Scan(&postID, &likes); err != nil {
			return nil, fmt.Errorf("sqlstore: top-n scan failed: %w", err)
		}
		result = append(result, PostLikes{PostID: postID.String, Likes: likes.Int64})
	}
	return result, rows.Err()
}

// PlatformTotals computes total likes and average engagement rate per
// platform in one pass.
func (s *Store) PlatformTotals(ctx context.Context) ([]PlatformAggregate, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		"SELECT platform, SUM(likes), AVG(engagement_rate) FROM %s GROUP BY platform", TableName))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: combined aggregation failed: %w", err)
	}
	defer rows.Close()

	var result []PlatformAggregate
	for rows.Next() {
		var platform sql.NullString
		var total sql.NullInt64
		var avg sql.NullFloat64
		if err := rows.Scan(&platform, &total, &avg); err != nil {
			return nil, fmt.Errorf("sqlstore: combined aggregation scan failed: %w", err)
		}
		result = append(result, PlatformAggregate{
			Platform:   platform.String,
			TotalLikes: total.Int64,
			AvgRate:    avg.Float64,
		})
	}
	return result, rows.Err()
}

// CountBySentiment counts rows with the given sentiment.
func (s *Store) CountBySentiment(ctx context.Context, sentiment string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE sentiment = ?", TableName),
		sentiment).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: sentiment count failed: %w", err)
	}
	return count, nil
}

// drainRows consumes a result set and returns the row count.
func drainRows(rows *sql.Rows) (int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return count, err
		}
		count++
	}
	return count, rows.Err()
}
