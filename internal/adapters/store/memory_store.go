// Package store provides ClassificationStore implementations: an in-memory
// map for tests and single-process deployments, and SQLite/MySQL backends
// for persistence across restarts.
package store

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/core"
)

// MemoryStore is an in-memory implementation of the ClassificationStore
// interface. Writes are full-record replacements, so concurrent Puts for
// the same key settle last-write-wins.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*core.ClassificationRecord
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*core.ClassificationRecord),
		logger:  logger,
	}
}

func key(userID, threadID string) string {
	return userID + "\x00" + threadID
}

// Get retrieves the record for a (user, thread) key
func (s *MemoryStore) Get(ctx context.Context, userID, threadID string) (*core.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[key(userID, threadID)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return record, nil
}

// Put upserts a record, replacing any prior record for the same key
func (s *MemoryStore) Put(ctx context.Context, record *core.ClassificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key(record.UserID, record.ThreadID)] = record
	return nil
}

// ListByRecency returns up to limit records for a user, most recently
// classified first
func (s *MemoryStore) ListByRecency(ctx context.Context, userID string, limit int) ([]*core.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*core.ClassificationRecord
	for _, record := range s.records {
		if record.UserID == userID {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ClassifiedAt.After(records[j].ClassifiedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
