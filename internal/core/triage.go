package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// TriageOptions bound the synchronous and background work per request.
type TriageOptions struct {
	// Query selects candidate threads at the message source.
	Query string
	// BatchFloor and BatchCeiling bound the synchronous classify batch:
	// batch = min(max(needed, floor), ceiling).
	BatchFloor   int
	BatchCeiling int
	// GapFillPage is how many threads a background gap-fill scans.
	GapFillPage int64
	// GapFillCap is how many threads one gap-fill run classifies.
	GapFillCap int
	// StaleRecheckCap bounds the stale records reclassified per run.
	StaleRecheckCap int
	// DefaultLimit applies when a caller asks for zero results.
	DefaultLimit int
}

func (o TriageOptions) withDefaults() TriageOptions {
	if o.Query == "" {
		o.Query = "in:inbox"
	}
	if o.BatchFloor <= 0 {
		o.BatchFloor = 5
	}
	if o.BatchCeiling <= 0 {
		o.BatchCeiling = 25
	}
	if o.GapFillPage <= 0 {
		o.GapFillPage = 50
	}
	if o.GapFillCap <= 0 {
		o.GapFillCap = 10
	}
	if o.StaleRecheckCap <= 0 {
		o.StaleRecheckCap = 5
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 20
	}
	return o
}

// TriageService assembles the category-grouped inbox view and keeps the
// classification store current without blocking interactive requests.
type TriageService struct {
	classifier *Classifier
	store      ClassificationStore
	source     MessageSource
	runner     TaskRunner
	logger     *zap.Logger
	opts       TriageOptions
}

// NewTriageService creates the triage engine over its collaborators.
func NewTriageService(
	classifier *Classifier,
	store ClassificationStore,
	source MessageSource,
	runner TaskRunner,
	logger *zap.Logger,
	opts TriageOptions,
) *TriageService {
	return &TriageService{
		classifier: classifier,
		store:      store,
		source:     source,
		runner:     runner,
		logger:     logger,
		opts:       opts.withDefaults(),
	}
}

// ClassifySingle classifies one thread and writes the result through to the
// store. The body is fetched from the source when absent; a failed fetch
// degrades to preview-only scoring. Duplicate classification of the same
// thread is idempotent because Put is a full-record replacement and the
// resolver is deterministic.
func (s *TriageService) ClassifySingle(ctx context.Context, userID string, email *Email) (*ClassificationRecord, error) {
	if email == nil || email.ThreadID == "" {
		return nil, fmt.Errorf("classify: thread id is required")
	}

	if email.Body == "" && s.source != nil {
		body, err := s.source.FetchBody(ctx, userID, email.ThreadID)
		if err != nil {
			s.logger.Debug("Body fetch failed, scoring preview only",
				zap.String("thread_id", email.ThreadID),
				zap.Error(err))
		} else {
			copied := *email
			copied.Body = body
			email = &copied
		}
	}

	record := s.classifier.Classify(ctx, userID, email)

	if err := s.store.Put(ctx, record); err != nil {
		// Degrade: the caller still gets the classification.
		s.logger.Warn("Failed to store classification",
			zap.String("user_id", userID),
			zap.String("thread_id", email.ThreadID),
			zap.Error(err))
	}

	return record, nil
}

// TriagedInbox returns up to maxResults records grouped by category. Cached
// records are served as-is, stale ones included; when the cache cannot
// satisfy the limit, a bounded batch of additional threads is classified
// synchronously. Background units are scheduled either way and the caller
// never waits on them.
func (s *TriageService) TriagedInbox(ctx context.Context, userID string, maxResults int, filter Category) (*TriagedInbox, error) {
	if maxResults <= 0 {
		maxResults = s.opts.DefaultLimit
	}

	cached, err := s.store.ListByRecency(ctx, userID, maxResults)
	if err != nil {
		// Structural store failure: degrade to an empty cache view and
		// still attempt a live fetch-and-classify below.
		s.logger.Warn("Classification store unavailable, serving live results only",
			zap.String("user_id", userID),
			zap.Error(err))
		cached = nil
	}

	results := make([]*ClassificationRecord, 0, maxResults)
	seen := make(map[string]struct{}, len(cached))
	var stale []*ClassificationRecord
	for _, rec := range cached {
		seen[rec.ThreadID] = struct{}{}
		results = append(results, rec)
		if rec.Stale() && len(stale) < s.opts.StaleRecheckCap {
			stale = append(stale, rec)
		}
	}

	if deficit := maxResults - len(results); deficit > 0 {
		results = s.fillDeficit(ctx, userID, deficit, maxResults, seen, results)
	} else {
		// Cache satisfied the request; keep it warm ahead of the next one.
		limit := s.opts.GapFillCap
		s.runner.Submit("gap-fill", func(ctx context.Context) {
			s.gapFill(ctx, userID, limit)
		})
	}

	if len(stale) > 0 {
		s.runner.Submit("stale-refresh", func(ctx context.Context) {
			s.refreshStale(ctx, userID, stale)
		})
	}

	return groupByCategory(results, filter), nil
}

// fillDeficit synchronously classifies a bounded batch of source threads
// not already in the result set.
func (s *TriageService) fillDeficit(
	ctx context.Context,
	userID string,
	deficit, maxResults int,
	seen map[string]struct{},
	results []*ClassificationRecord,
) []*ClassificationRecord {
	batch := deficit
	if batch < s.opts.BatchFloor {
		batch = s.opts.BatchFloor
	}
	if batch > s.opts.BatchCeiling {
		batch = s.opts.BatchCeiling
	}

	// Over-fetch by the cached count so already-classified threads can be
	// skipped without shrinking the batch.
	emails, err := s.source.ListUnclassified(ctx, userID, s.opts.Query, int64(batch+len(seen)))
	if err != nil {
		s.logger.Warn("Message source unavailable during triage",
			zap.String("user_id", userID),
			zap.Error(err))
		return results
	}

	classified := 0
	for _, email := range emails {
		if classified >= batch {
			break
		}
		if _, ok := seen[email.ThreadID]; ok {
			continue
		}
		record, err := s.ClassifySingle(ctx, userID, email)
		if err != nil {
			continue
		}
		classified++
		seen[email.ThreadID] = struct{}{}
		if len(results) < maxResults {
			results = append(results, record)
		}
	}

	return results
}

// TriggerBackgroundClassification kicks off a gap-filling pass on demand,
// independent of a triage read, and returns immediately.
func (s *TriageService) TriggerBackgroundClassification(userID string, maxEmails int) {
	if maxEmails <= 0 {
		maxEmails = s.opts.GapFillCap
	}
	s.runner.Submit("triggered-gap-fill", func(ctx context.Context) {
		s.gapFill(ctx, userID, maxEmails)
	})
}

// gapFill scans a page of the message source for threads absent from the
// store and classifies up to limit of them. Pure best effort.
func (s *TriageService) gapFill(ctx context.Context, userID string, limit int) {
	emails, err := s.source.ListUnclassified(ctx, userID, s.opts.Query, s.opts.GapFillPage)
	if err != nil {
		s.logger.Warn("Gap-fill scan failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	filled := 0
	for _, email := range emails {
		if filled >= limit {
			break
		}
		_, err := s.store.Get(ctx, userID, email.ThreadID)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			// Store is down; there is no point classifying ahead.
			s.logger.Warn("Gap-fill aborted, store unavailable",
				zap.String("user_id", userID),
				zap.Error(err))
			return
		}
		if _, err := s.ClassifySingle(ctx, userID, email); err != nil {
			continue
		}
		filled++
	}

	if filled > 0 {
		s.logger.Info("Gap-fill classified threads",
			zap.String("user_id", userID),
			zap.Int("count", filled))
	}
}

// refreshStale reclassifies records whose stored version predates the
// current one. A failure on one key skips that key, never the batch.
func (s *TriageService) refreshStale(ctx context.Context, userID string, stale []*ClassificationRecord) {
	refreshed := 0
	for _, rec := range stale {
		body, err := s.source.FetchBody(ctx, userID, rec.ThreadID)
		if err != nil {
			// Leave the record stale; the next pass retries.
			s.logger.Debug("Stale refresh skipped thread",
				zap.String("thread_id", rec.ThreadID),
				zap.Error(err))
			continue
		}
		email := &Email{
			ThreadID: rec.ThreadID,
			Sender:   rec.Sender,
			Subject:  rec.Subject,
			Body:     body,
		}
		if _, err := s.ClassifySingle(ctx, userID, email); err != nil {
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		s.logger.Info("Reclassified stale records",
			zap.String("user_id", userID),
			zap.Int("count", refreshed))
	}
}

func groupByCategory(records []*ClassificationRecord, filter Category) *TriagedInbox {
	inbox := &TriagedInbox{
		Categories: make(map[Category][]*ClassificationRecord),
	}
	for _, rec := range records {
		if filter != "" && rec.Category != filter {
			continue
		}
		inbox.Categories[rec.Category] = append(inbox.Categories[rec.Category], rec)
		inbox.Total++
	}
	return inbox
}
