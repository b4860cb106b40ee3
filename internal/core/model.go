package core

import (
	"time"
)

// Category is one of the priority buckets a mail thread can be triaged into.
type Category string

const (
	CategoryUrgent      Category = "urgent"
	CategoryWaiting     Category = "waiting_for_reply"
	CategoryAction      Category = "action_items"
	CategoryNewsletters Category = "newsletters"
	CategoryInvoices    Category = "invoices"
	CategoryClients     Category = "clients"
	// CategoryNormal is the fallback bucket; it never accumulates a score.
	CategoryNormal Category = "normal"
)

// ScoredCategories returns the six scored buckets in canonical order.
func ScoredCategories() []Category {
	return []Category{
		CategoryUrgent,
		CategoryWaiting,
		CategoryAction,
		CategoryNewsletters,
		CategoryInvoices,
		CategoryClients,
	}
}

// ScoreVector maps categories to non-negative integer scores.
type ScoreVector map[Category]int

// NewScoreVector creates an empty score vector.
func NewScoreVector() ScoreVector {
	return make(ScoreVector, 6)
}

// Add increments the score for a category.
func (v ScoreVector) Add(cat Category, points int) {
	v[cat] += points
}

// IsZero reports whether every category score is zero.
func (v ScoreVector) IsZero() bool {
	for _, n := range v {
		if n != 0 {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the vector.
func (v ScoreVector) Clone() ScoreVector {
	out := make(ScoreVector, len(v))
	for cat, n := range v {
		out[cat] = n
	}
	return out
}

// Email represents one mail thread as supplied by the message source.
// Immutable once fetched for a given classification pass.
type Email struct {
	ThreadID string
	Sender   string
	Subject  string
	Preview  string
	Body     string
}

// ScoreBreakdown holds the per-scorer vectors plus their elementwise sum.
type ScoreBreakdown struct {
	Rules    ScoreVector `json:"rules"`
	Sender   ScoreVector `json:"sender"`
	Semantic ScoreVector `json:"semantic"`
	Total    ScoreVector `json:"total"`
}

// ClassificationVersion is the current global scoring version. Any stored
// record carrying a different version is stale and eligible for background
// reclassification, but remains usable for display until replaced.
const ClassificationVersion = "v4"

// ClassificationRecord is the stored triage outcome for one (user, thread).
// The category is always derivable from Scores.Total via ResolvePriority;
// the two are never stored inconsistently.
type ClassificationRecord struct {
	UserID       string         `json:"user_id"`
	ThreadID     string         `json:"thread_id"`
	Sender       string         `json:"sender"`
	Subject      string         `json:"subject"`
	Category     Category       `json:"category"`
	Scores       ScoreBreakdown `json:"scores"`
	ClassifiedAt time.Time      `json:"classified_at"`
	Version      string         `json:"version"`
}

// Stale reports whether the record was produced by an older scoring version.
func (r *ClassificationRecord) Stale() bool {
	return r.Version != ClassificationVersion
}

// TriagedInbox is the category-grouped view returned to callers.
type TriagedInbox struct {
	Categories map[Category][]*ClassificationRecord `json:"categories"`
	Total      int                                  `json:"total"`
}

// Contact is one known correspondent from the contacts directory.
type Contact struct {
	Email  string
	Name   string
	Groups []string
}
