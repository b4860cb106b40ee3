package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
)

// SQLiteStore is a SQLite implementation of the ClassificationStore
// interface. The score breakdown is stored as a JSON blob alongside the
// resolved category so the two can never drift apart in storage.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classifications (
			user_id TEXT NOT NULL,
			thread_id TEXT NOT NULL,
			sender TEXT,
			subject TEXT,
			category TEXT NOT NULL,
			scores TEXT NOT NULL,
			classified_at TIMESTAMP NOT NULL,
			version TEXT NOT NULL,
			PRIMARY KEY (user_id, thread_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	// Index for the recency listing
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_user_recency
		ON classifications(user_id, classified_at DESC)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Get retrieves the record for a (user, thread) key
func (s *SQLiteStore) Get(ctx context.Context, userID, threadID string) (*core.ClassificationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sender, subject, category, scores, classified_at, version
		FROM classifications
		WHERE user_id = ? AND thread_id = ?
	`, userID, threadID)

	record := &core.ClassificationRecord{UserID: userID, ThreadID: threadID}
	var scores, classifiedAt string
	var category string
	err := row.Scan(&record.Sender, &record.Subject, &category, &scores, &classifiedAt, &record.Version)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query classification: %w", err)
	}

	record.Category = core.Category(category)
	if err := json.Unmarshal([]byte(scores), &record.Scores); err != nil {
		return nil, fmt.Errorf("failed to decode score breakdown: %w", err)
	}
	record.ClassifiedAt, err = time.Parse(time.RFC3339Nano, classifiedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse classified_at timestamp: %w", err)
	}

	return record, nil
}

// Put upserts a record, replacing any prior record for the same key
func (s *SQLiteStore) Put(ctx context.Context, record *core.ClassificationRecord) error {
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode score breakdown: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO classifications
			(user_id, thread_id, sender, subject, category, scores, classified_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.UserID, record.ThreadID, record.Sender, record.Subject,
		string(record.Category), string(scores),
		record.ClassifiedAt.Format(time.RFC3339Nano), record.Version)

	if err != nil {
		return fmt.Errorf("failed to upsert classification: %w", err)
	}
	return nil
}

// ListByRecency returns up to limit records for a user, most recently
// classified first
func (s *SQLiteStore) ListByRecency(ctx context.Context, userID string, limit int) ([]*core.ClassificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, sender, subject, category, scores, classified_at, version
		FROM classifications
		WHERE user_id = ?
		ORDER BY classified_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	defer rows.Close()

	var records []*core.ClassificationRecord
	for rows.Next() {
		record := &core.ClassificationRecord{UserID: userID}
		var scores, classifiedAt, category string
		if err := rows.Scan(&record.ThreadID, &record.Sender, &record.Subject,
			&category, &scores, &classifiedAt, &record.Version); err != nil {
			return nil, fmt.Errorf("failed to scan classification row: %w", err)
		}
		record.Category = core.Category(category)
		if err := json.Unmarshal([]byte(scores), &record.Scores); err != nil {
			s.logger.Warn("Skipping record with undecodable score breakdown",
				zap.String("thread_id", record.ThreadID),
				zap.Error(err))
			continue
		}
		record.ClassifiedAt, err = time.Parse(time.RFC3339Nano, classifiedAt)
		if err != nil {
			s.logger.Warn("Skipping record with unparseable timestamp",
				zap.String("thread_id", record.ThreadID),
				zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classification rows: %w", err)
	}

	return records, nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
