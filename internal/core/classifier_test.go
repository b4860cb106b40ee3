package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/domains"
	"github.com/mikey/inbox-triage/internal/utils"
)

type fakeOracle struct {
	label Label
	err   error
	calls int
}

func (f *fakeOracle) ClassifyLabel(ctx context.Context, email *Email) (Label, error) {
	f.calls++
	if f.err != nil {
		return LabelUnrecognized, f.err
	}
	return f.label, nil
}

func newTestClassifier(oracle SemanticClassifier, dir ContactsDirectory) *Classifier {
	logger := zap.NewNop()
	cache := NewReputationCache(dir, logger)
	sender := NewSenderScorer(cache, domains.NewMatcher(nil, nil, nil, logger), logger)
	semantic := NewSemanticScorer(oracle, logger)
	c := NewClassifier(sender, semantic, utils.NewTextProcessor(logger), logger)
	c.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestClassifyUrgentScenario(t *testing.T) {
	c := newTestClassifier(&fakeOracle{label: LabelUrgent}, &fakeDirectory{})
	email := &Email{
		ThreadID: "t1",
		Sender:   "alerts@aws.amazon.com",
		Subject:  "URGENT: server down",
		Body:     "needs action ASAP",
	}

	rec := c.Classify(context.Background(), "me", email)

	if rec.Category != CategoryUrgent {
		t.Fatalf("category = %s, want %s", rec.Category, CategoryUrgent)
	}
	// rules urgent 30 + sender critical-domain 15 + oracle 60.
	if rec.Scores.Total[CategoryUrgent] != 105 {
		t.Errorf("urgent total = %d, want 105", rec.Scores.Total[CategoryUrgent])
	}
}

func TestClassifyClientScenario(t *testing.T) {
	dir := &fakeDirectory{contacts: map[string]Contact{
		"dana@client.example": {Email: "dana@client.example", Groups: []string{"clients"}},
	}}
	c := newTestClassifier(&fakeOracle{label: LabelNormal}, dir)
	email := &Email{
		ThreadID: "t2",
		Sender:   "Dana <dana@client.example>",
		Subject:  "Quick question",
		Body:     "When works for you next week?",
	}

	rec := c.Classify(context.Background(), "me", email)
	if rec.Category != CategoryClients {
		t.Fatalf("category = %s, want %s", rec.Category, CategoryClients)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := newTestClassifier(&fakeOracle{label: LabelInvoice}, &fakeDirectory{})
	email := &Email{ThreadID: "t3", Sender: "receipts@stripe.com", Subject: "Invoice #99", Body: "amount due"}

	a := c.Classify(context.Background(), "me", email)
	b := c.Classify(context.Background(), "me", email)

	if a.Category != b.Category {
		t.Errorf("categories differ: %s vs %s", a.Category, b.Category)
	}
	for _, cat := range ScoredCategories() {
		if a.Scores.Total[cat] != b.Scores.Total[cat] {
			t.Errorf("%s total differs: %d vs %d", cat, a.Scores.Total[cat], b.Scores.Total[cat])
		}
	}
}

func TestClassifyCategoryMatchesResolvedTotal(t *testing.T) {
	c := newTestClassifier(&fakeOracle{label: LabelNewsletter}, &fakeDirectory{})
	emails := []*Email{
		{ThreadID: "a", Sender: "news@substack.com", Subject: "Weekly digest", Body: "unsubscribe"},
		{ThreadID: "b", Sender: "boss@example.com", Subject: "please review", Body: "the attached doc"},
		{ThreadID: "c", Sender: "x@example.com", Subject: "hi", Body: "nothing in particular"},
	}

	for _, email := range emails {
		rec := c.Classify(context.Background(), "me", email)
		if want := ResolvePriority(rec.Scores.Total); rec.Category != want {
			t.Errorf("thread %s: category %s does not match resolved total %s", email.ThreadID, rec.Category, want)
		}
	}
}

func TestClassifyFallsBackToPreview(t *testing.T) {
	c := newTestClassifier(&fakeOracle{label: LabelNormal}, &fakeDirectory{})
	email := &Email{
		ThreadID: "t4",
		Sender:   "billing@vendor.example",
		Subject:  "Statement",
		Preview:  "your invoice for May is ready",
	}

	rec := c.Classify(context.Background(), "me", email)
	if rec.Scores.Rules[CategoryInvoices] != 30 {
		t.Errorf("invoices rules score = %d, want 30 from preview fallback", rec.Scores.Rules[CategoryInvoices])
	}
}

func TestClassifyDegradesOnOracleError(t *testing.T) {
	c := newTestClassifier(&fakeOracle{err: errors.New("model timeout")}, &fakeDirectory{})
	email := &Email{ThreadID: "t5", Sender: "x@example.com", Subject: "hello", Body: "just saying hi"}

	rec := c.Classify(context.Background(), "me", email)
	if !rec.Scores.Semantic.IsZero() {
		t.Errorf("semantic scores should be zero on oracle failure, got %v", rec.Scores.Semantic)
	}
	if rec.Category != CategoryNormal {
		t.Errorf("category = %s, want %s", rec.Category, CategoryNormal)
	}
}

func TestClassifyStampsVersion(t *testing.T) {
	c := newTestClassifier(&fakeOracle{label: LabelNormal}, &fakeDirectory{})
	rec := c.Classify(context.Background(), "me", &Email{ThreadID: "t6", Sender: "x@example.com"})

	if rec.Version != ClassificationVersion {
		t.Errorf("version = %q, want %q", rec.Version, ClassificationVersion)
	}
	if rec.Stale() {
		t.Error("freshly classified record must not be stale")
	}
	if rec.ClassifiedAt.IsZero() {
		t.Error("record must carry a classification timestamp")
	}
}

func TestSemanticScorerNilOracle(t *testing.T) {
	s := NewSemanticScorer(nil, zap.NewNop())
	v := s.Score(context.Background(), &Email{ThreadID: "t"})
	if !v.IsZero() {
		t.Errorf("expected zero vector with no oracle, got %v", v)
	}
}
