package core

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a ClassificationStore when no record exists
// for the requested (user, thread) key.
var ErrNotFound = errors.New("classification record not found")

// MessageSource defines the interface to the external mail transport.
type MessageSource interface {
	// ListUnclassified returns thread metadata (no bodies) matching a query.
	ListUnclassified(ctx context.Context, userID, query string, maxResults int64) ([]*Email, error)

	// FetchBody returns the plain-text body of a thread.
	FetchBody(ctx context.Context, userID, threadID string) (string, error)
}

// SemanticClassifier defines the interface to the semantic oracle.
type SemanticClassifier interface {
	// ClassifyLabel asks the oracle for exactly one label from the closed
	// set. Implementations return LabelUnrecognized for anything else.
	ClassifyLabel(ctx context.Context, email *Email) (Label, error)
}

// ContactsDirectory defines the interface for looking up a user's known
// correspondents, keyed by lower-cased bare address.
type ContactsDirectory interface {
	Find(ctx context.Context, userID string) (map[string]Contact, error)
}

// ClassificationStore defines the versioned persistent record of triage
// outcomes. Put is a full-record replacement, so concurrent writes for the
// same key are last-write-wins with no read-modify-write races.
type ClassificationStore interface {
	// Get retrieves the record for a (user, thread) key, or ErrNotFound.
	Get(ctx context.Context, userID, threadID string) (*ClassificationRecord, error)

	// Put upserts a record, replacing any prior record for the same key.
	Put(ctx context.Context, record *ClassificationRecord) error

	// ListByRecency returns up to limit records for a user, most recently
	// classified first.
	ListByRecency(ctx context.Context, userID string, limit int) ([]*ClassificationRecord, error)
}

// TaskRunner accepts fire-and-forget background work. Submit never blocks
// the caller and returns no handle; failures are the task's own problem.
type TaskRunner interface {
	Submit(name string, task func(ctx context.Context))
}
