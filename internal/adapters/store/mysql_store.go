package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
)

const mysqlTimeFormat = "2006-01-02 15:04:05.000000"

// MySQLStore is a MySQL implementation of the ClassificationStore interface
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classifications (
			user_id VARCHAR(255) NOT NULL,
			thread_id VARCHAR(255) NOT NULL,
			sender VARCHAR(512),
			subject TEXT,
			category VARCHAR(32) NOT NULL,
			scores JSON NOT NULL,
			classified_at TIMESTAMP(6) NOT NULL,
			version VARCHAR(64) NOT NULL,
			PRIMARY KEY (user_id, thread_id),
			INDEX idx_user_recency (user_id, classified_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Get retrieves the record for a (user, thread) key
func (s *MySQLStore) Get(ctx context.Context, userID, threadID string) (*core.ClassificationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sender, subject, category, scores, classified_at, version
		FROM classifications
		WHERE user_id = ? AND thread_id = ?
	`, userID, threadID)

	record := &core.ClassificationRecord{UserID: userID, ThreadID: threadID}
	var scores, classifiedAt, category string
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
	record.ClassifiedAt, err = time.Parse(mysqlTimeFormat, classifiedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse classified_at timestamp: %w", err)
	}

	return record, nil
}

// Put upserts a record, replacing any prior record for the same key
func (s *MySQLStore) Put(ctx context.Context, record *core.ClassificationRecord) error {
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode score breakdown: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO classifications
			(user_id, thread_id, sender, subject, category, scores, classified_at, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			sender = VALUES(sender),
			subject = VALUES(subject),
			category = VALUES(category),
			scores = VALUES(scores),
			classified_at = VALUES(classified_at),
			version = VALUES(version)
	`, record.UserID, record.ThreadID, record.Sender, record.Subject,
		string(record.Category), string(scores),
		record.ClassifiedAt.UTC().Format(mysqlTimeFormat), record.Version)

	if err != nil {
		return fmt.Errorf("failed to upsert classification: %w", err)
	}
	return nil
}

// ListByRecency returns up to limit records for a user, most recently
// classified first
func (s *MySQLStore) ListByRecency(ctx context.Context, userID string, limit int) ([]*core.ClassificationRecord, error) {
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
		record.ClassifiedAt, err = time.Parse(mysqlTimeFormat, classifiedAt)
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
func (s *MySQLStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
