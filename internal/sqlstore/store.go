// Package sqlstore implements the relational side of the benchmark pair: a
// single SQLite table mirroring the engagement dataset with typed columns.
// It consumes the same shaped records as the column store, splitting the
// qualified column map back into per-column values so both backends load
// from one shaping pass.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/engagemark/engagemark/pkg/types"
)

// TableName is the engagement data table.
const TableName = "social_media"

// Store is the SQLite-backed relational store. Safe for concurrent use;
// database/sql serializes access to the single connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and ensures the
// schema exists. WAL mode keeps concurrent batch writers from tripping on
// each other during the load phase.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlstore: failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			platform TEXT,
			post_id TEXT,
			post_type TEXT,
			post_content TEXT,
			post_timestamp TEXT,
			likes INTEGER,
			comments INTEGER,
			shares INTEGER,
			impressions INTEGER,
			reach INTEGER,
			engagement_rate REAL,
			audience_age INTEGER,
			audience_gender TEXT,
			audience_location TEXT,
			audience_interests TEXT,
			campaign_id TEXT,
			sentiment TEXT,
			influencer_id TEXT
		)
	`, TableName)
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("sqlstore: failed to create table: %w", err)
	}
	return nil
}

// Reset drops and recreates the table, mirroring the recreate-table flow of
// a fresh load run.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", TableName)); err != nil {
		return fmt.Errorf("sqlstore: failed to drop table: %w", err)
	}
	return s.ensureSchema(ctx)
}

// WriteBatch inserts a batch of shaped records inside one transaction.
// The row key lands in the id column; INSERT OR REPLACE gives the same
// overwrite-by-key semantics as the column store.
func (s *Store) WriteBatch(ctx context.Context, records []types.ShapedRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertSQL := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (
			id, platform, post_id, post_type, post_content, post_timestamp,
			likes, comments, shares, impressions, reach, engagement_rate,
			audience_age, audience_gender, audience_location,
			audience_interests, campaign_id, sentiment, influencer_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, TableName)

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("sqlstore: failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		cols := rec.Columns
		_, err := stmt.ExecContext(ctx,
			rec.Key,
			textValue(cols, "cf:platform"),
			textValue(cols, "cf:post_id"),
			textValue(cols, "cf:post_type"),
			textValue(cols, "cf:post_content"),
			textValue(cols, "cf:post_timestamp"),
			intValue(cols, "metrics:likes"),
			intValue(cols, "metrics:comments"),
			intValue(cols, "metrics:shares"),
			intValue(cols, "metrics:impressions"),
			intValue(cols, "metrics:reach"),
			realValue(cols, "metrics:engagement_rate"),
			intValue(cols, "cf:audience_age"),
			textValue(cols, "cf:audience_gender"),
			textValue(cols, "cf:audience_location"),
			textValue(cols, "cf:audience_interests"),
			textValue(cols, "cf:campaign_id"),
			textValue(cols, "cf:sentiment"),
			textValue(cols, "cf:influencer_id"),
		)
		if err != nil {
			return fmt.Errorf("sqlstore: failed to insert record %q: %w", rec.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: failed to commit batch: %w", err)
	}
	return nil
}

// Count returns the number of rows in the table.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", TableName)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: count failed: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// textValue returns the column value or NULL when the shaper omitted it.
func textValue(cols map[string]string, column string) interface{} {
	if v, ok := cols[column]; ok {
		return v
	}
	return nil
}

// intValue parses a shaper-normalized numeric string. Whole values insert
// as integers; the shaper's occasional 2-decimal strings fall back to REAL.
func intValue(cols map[string]string, column string) interface{} {
	v, ok := cols[column]
	if !ok {
		return nil
	}
	if !strings.Contains(v, ".") {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return nil
}

func realValue(cols map[string]string, column string) interface{} {
	v, ok := cols[column]
	if !ok {
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return nil
}
