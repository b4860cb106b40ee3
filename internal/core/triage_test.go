package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/domains"
	"github.com/mikey/inbox-triage/internal/utils"
)

// syncRunner executes submitted tasks inline so tests observe their effects
// deterministically.
type syncRunner struct {
	names []string
}

func (r *syncRunner) Submit(name string, task func(ctx context.Context)) {
	r.names = append(r.names, name)
	task(context.Background())
}

// dropRunner records submissions without running them.
type dropRunner struct {
	names []string
}

func (r *dropRunner) Submit(name string, task func(ctx context.Context)) {
	r.names = append(r.names, name)
}

type fakeSource struct {
	emails    []*Email
	listErr   error
	bodies    map[string]string
	listCalls []int64
}

func (f *fakeSource) ListUnclassified(ctx context.Context, userID, query string, maxResults int64) ([]*Email, error) {
	f.listCalls = append(f.listCalls, maxResults)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if int64(len(f.emails)) > maxResults {
		return f.emails[:maxResults], nil
	}
	return f.emails, nil
}

func (f *fakeSource) FetchBody(ctx context.Context, userID, threadID string) (string, error) {
	if body, ok := f.bodies[threadID]; ok {
		return body, nil
	}
	return "", fmt.Errorf("no body for thread %s", threadID)
}

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*ClassificationRecord
	getErr  error
	putErr  error
	listErr error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*ClassificationRecord)}
}

func (f *fakeStore) key(userID, threadID string) string { return userID + "\x00" + threadID }

func (f *fakeStore) Get(ctx context.Context, userID, threadID string) (*ClassificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	rec, ok := f.records[f.key(userID, threadID)]
	if !ok {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) Put(ctx context.Context, record *ClassificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.records[f.key(record.UserID, record.ThreadID)] = record
	return nil
}

func (f *fakeStore) ListByRecency(ctx context.Context, userID string, limit int) ([]*ClassificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*ClassificationRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClassifiedAt.After(out[j].ClassifiedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(t *testing.T, store ClassificationStore, source MessageSource, runner TaskRunner) *TriageService {
	t.Helper()
	logger := zap.NewNop()
	cache := NewReputationCache(&fakeDirectory{}, logger)
	sender := NewSenderScorer(cache, domains.NewMatcher(nil, nil, nil, logger), logger)
	semantic := NewSemanticScorer(&fakeOracle{label: LabelNormal}, logger)
	classifier := NewClassifier(sender, semantic, utils.NewTextProcessor(logger), logger)
	return NewTriageService(classifier, store, source, runner, logger, TriageOptions{})
}

func storedRecord(userID, threadID string, category Category, age time.Duration) *ClassificationRecord {
	return &ClassificationRecord{
		UserID:       userID,
		ThreadID:     threadID,
		Sender:       "someone@example.com",
		Subject:      "subject " + threadID,
		Category:     category,
		Scores:       ScoreBreakdown{Total: NewScoreVector()},
		ClassifiedAt: time.Now().Add(-age),
		Version:      ClassificationVersion,
	}
}

func sourceEmails(n int) []*Email {
	out := make([]*Email, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Email{
			ThreadID: fmt.Sprintf("src-%02d", i),
			Sender:   "someone@example.com",
			Subject:  "hello",
			Preview:  "nothing notable here",
		})
	}
	return out
}

func TestClassifySingleStoresRecord(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{bodies: map[string]string{"t1": "your invoice is attached, payment due Friday"}}
	svc := newTestService(t, store, source, &dropRunner{})

	rec, err := svc.ClassifySingle(context.Background(), "me", &Email{
		ThreadID: "t1",
		Sender:   "billing@vendor.example",
		Subject:  "Statement",
	})
	require.NoError(t, err)
	assert.Equal(t, ClassificationVersion, rec.Version)
	// Body was fetched from the source and scored.
	assert.Equal(t, 30, rec.Scores.Rules[CategoryInvoices])

	got, err := store.Get(context.Background(), "me", "t1")
	require.NoError(t, err)
	assert.Equal(t, rec.Category, got.Category)
}

func TestClassifySingleRequiresThreadID(t *testing.T) {
	svc := newTestService(t, newFakeStore(), &fakeSource{}, &dropRunner{})

	_, err := svc.ClassifySingle(context.Background(), "me", &Email{})
	assert.Error(t, err)
	_, err = svc.ClassifySingle(context.Background(), "me", nil)
	assert.Error(t, err)
}

func TestClassifySingleDegradesOnBodyFetchFailure(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(t, store, &fakeSource{}, &dropRunner{})

	rec, err := svc.ClassifySingle(context.Background(), "me", &Email{
		ThreadID: "t1",
		Sender:   "x@example.com",
		Subject:  "hi",
		Preview:  "please review the draft",
	})
	require.NoError(t, err)
	assert.Equal(t, 20, rec.Scores.Rules[CategoryAction], "preview should be scored when the body fetch fails")
}

func TestClassifySingleSurvivesPutFailure(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("disk full")
	svc := newTestService(t, store, &fakeSource{}, &dropRunner{})

	rec, err := svc.ClassifySingle(context.Background(), "me", &Email{ThreadID: "t1", Sender: "x@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestTriagedInboxDeficitPath(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Put(context.Background(),
			storedRecord("me", fmt.Sprintf("cached-%d", i), CategoryNormal, time.Duration(i)*time.Minute)))
	}
	source := &fakeSource{emails: sourceEmails(12)}
	runner := &dropRunner{}
	svc := newTestService(t, store, source, runner)

	inbox, err := svc.TriagedInbox(context.Background(), "me", 10, "")
	require.NoError(t, err)

	// 3 cached plus 7 freshly classified.
	assert.Equal(t, 10, inbox.Total)
	// The batch over-fetches by the cached count: deficit 7 + seen 3.
	require.Len(t, source.listCalls, 1)
	assert.Equal(t, int64(10), source.listCalls[0])
	// New classifications were written through.
	assert.Equal(t, 10, len(store.records))
	// No gap-fill on the deficit path.
	assert.NotContains(t, runner.names, "gap-fill")
}

func TestTriagedInboxBatchFloor(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 9; i++ {
		require.NoError(t, store.Put(context.Background(),
			storedRecord("me", fmt.Sprintf("cached-%d", i), CategoryNormal, time.Duration(i)*time.Minute)))
	}
	source := &fakeSource{emails: sourceEmails(30)}
	svc := newTestService(t, store, source, &dropRunner{})

	// Deficit of 1 is raised to the floor of 5; results still capped at 10.
	inbox, err := svc.TriagedInbox(context.Background(), "me", 10, "")
	require.NoError(t, err)
	assert.Equal(t, 10, inbox.Total)
	assert.Equal(t, 14, len(store.records), "floor-sized batch classifies beyond the display limit")
}

func TestTriagedInboxBatchCeiling(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{emails: sourceEmails(100)}
	svc := newTestService(t, store, source, &dropRunner{})

	inbox, err := svc.TriagedInbox(context.Background(), "me", 80, "")
	require.NoError(t, err)
	// Deficit of 80 is clamped to the ceiling of 25.
	assert.Equal(t, 25, inbox.Total)
	assert.Equal(t, 25, len(store.records))
}

func TestTriagedInboxSufficientCacheSchedulesGapFill(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Put(context.Background(),
			storedRecord("me", fmt.Sprintf("cached-%d", i), CategoryNormal, time.Duration(i)*time.Minute)))
	}
	// Two threads the store has never seen.
	source := &fakeSource{emails: append(sourceEmails(2),
		&Email{ThreadID: "cached-0", Sender: "someone@example.com"})}
	runner := &syncRunner{}
	svc := newTestService(t, store, source, runner)

	inbox, err := svc.TriagedInbox(context.Background(), "me", 5, "")
	require.NoError(t, err)
	assert.Equal(t, 5, inbox.Total)
	assert.Contains(t, runner.names, "gap-fill")
	// The gap-fill classified the two absent threads and skipped the cached one.
	assert.Equal(t, 7, len(store.records))
}

func TestTriagedInboxServesStaleAndSchedulesRefresh(t *testing.T) {
	store := newFakeStore()
	staleRec := storedRecord("me", "old-1", CategoryNormal, time.Hour)
	staleRec.Version = "v2"
	require.NoError(t, store.Put(context.Background(), staleRec))
	require.NoError(t, store.Put(context.Background(), storedRecord("me", "fresh-1", CategoryNormal, time.Minute)))

	source := &fakeSource{bodies: map[string]string{"old-1": "invoice attached, amount due"}}
	runner := &syncRunner{}
	svc := newTestService(t, store, source, runner)

	inbox, err := svc.TriagedInbox(context.Background(), "me", 2, "")
	require.NoError(t, err)

	// The stale record is served as-is in this response.
	var served *ClassificationRecord
	for _, recs := range inbox.Categories {
		for _, rec := range recs {
			if rec.ThreadID == "old-1" {
				served = rec
			}
		}
	}
	require.NotNil(t, served)
	assert.Equal(t, "v2", served.Version)

	// The synchronous runner has already refreshed it in the store.
	assert.Contains(t, runner.names, "stale-refresh")
	got, err := store.Get(context.Background(), "me", "old-1")
	require.NoError(t, err)
	assert.Equal(t, ClassificationVersion, got.Version)
	assert.False(t, got.Stale())
}

func TestTriagedInboxStaleRecheckCap(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 8; i++ {
		rec := storedRecord("me", fmt.Sprintf("old-%d", i), CategoryNormal, time.Duration(i)*time.Minute)
		rec.Version = "v1"
		require.NoError(t, store.Put(context.Background(), rec))
	}
	source := &fakeSource{bodies: map[string]string{}}
	for i := 0; i < 8; i++ {
		source.bodies[fmt.Sprintf("old-%d", i)] = "hello"
	}
	runner := &syncRunner{}
	svc := newTestService(t, store, source, runner)

	_, err := svc.TriagedInbox(context.Background(), "me", 8, "")
	require.NoError(t, err)

	refreshed := 0
	for _, rec := range store.records {
		if !rec.Stale() {
			refreshed++
		}
	}
	assert.Equal(t, 5, refreshed, "stale refresh is capped per run")
}

func TestTriagedInboxStoreDownServesLiveOnly(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("store down")
	source := &fakeSource{emails: sourceEmails(4)}
	svc := newTestService(t, store, source, &dropRunner{})

	inbox, err := svc.TriagedInbox(context.Background(), "me", 4, "")
	require.NoError(t, err)
	assert.Equal(t, 4, inbox.Total, "live classification still works without the cache")
}

func TestTriagedInboxSourceDownServesCacheOnly(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.Put(context.Background(), storedRecord("me", "cached-1", CategoryNormal, time.Minute)))
	source := &fakeSource{listErr: errors.New("mail api down")}
	svc := newTestService(t, store, source, &dropRunner{})

	inbox, err := svc.TriagedInbox(context.Background(), "me", 10, "")
	require.NoError(t, err)
	assert.Equal(t, 1, inbox.Total)
}

func TestTriagedInboxCategoryFilter(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.Put(context.Background(), storedRecord("me", "a", CategoryUrgent, time.Minute)))
	require.NoError(t, store.Put(context.Background(), storedRecord("me", "b", CategoryNormal, 2*time.Minute)))
	require.NoError(t, store.Put(context.Background(), storedRecord("me", "c", CategoryUrgent, 3*time.Minute)))
	svc := newTestService(t, store, &fakeSource{}, &dropRunner{})

	inbox, err := svc.TriagedInbox(context.Background(), "me", 3, CategoryUrgent)
	require.NoError(t, err)
	assert.Equal(t, 2, inbox.Total)
	assert.Len(t, inbox.Categories[CategoryUrgent], 2)
	assert.NotContains(t, inbox.Categories, CategoryNormal)
}

func TestTriggerBackgroundClassification(t *testing.T) {
	store := newFakeStore()
	source := &fakeSource{emails: sourceEmails(6)}
	runner := &syncRunner{}
	svc := newTestService(t, store, source, runner)

	svc.TriggerBackgroundClassification("me", 4)

	assert.Contains(t, runner.names, "triggered-gap-fill")
	assert.Equal(t, 4, len(store.records), "gap-fill honors the requested cap")
}

func TestGapFillAbortsWhenStoreDown(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("store down")
	source := &fakeSource{emails: sourceEmails(6)}
	runner := &syncRunner{}
	svc := newTestService(t, store, source, runner)

	svc.TriggerBackgroundClassification("me", 4)

	assert.Equal(t, 0, store.puts, "no classification is attempted when the store cannot answer")
}

func TestRefreshStaleSkipsFailedFetches(t *testing.T) {
	store := newFakeStore()
	good := storedRecord("me", "old-good", CategoryNormal, time.Hour)
	good.Version = "v1"
	bad := storedRecord("me", "old-bad", CategoryNormal, time.Hour)
	bad.Version = "v1"
	require.NoError(t, store.Put(context.Background(), good))
	require.NoError(t, store.Put(context.Background(), bad))

	source := &fakeSource{bodies: map[string]string{"old-good": "hello"}}
	runner := &syncRunner{}
	svc := newTestService(t, store, source, runner)

	_, err := svc.TriagedInbox(context.Background(), "me", 2, "")
	require.NoError(t, err)

	refreshedGood, err := store.Get(context.Background(), "me", "old-good")
	require.NoError(t, err)
	assert.False(t, refreshedGood.Stale())

	stillStale, err := store.Get(context.Background(), "me", "old-bad")
	require.NoError(t, err)
	assert.True(t, stillStale.Stale(), "a failed body fetch leaves the record stale for the next pass")
}
