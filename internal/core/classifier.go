package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/utils"
)

// bodyExcerptLimit caps how much text the scorers see per email.
const bodyExcerptLimit = 4096

// Clock supplies timestamps; swapped out in tests.
type Clock func() time.Time

// Classifier runs the full scoring pipeline for one email: content rules,
// sender reputation and the semantic oracle, combined and resolved to a
// single category. Side-effect-free except for the reputation cache warm-up.
type Classifier struct {
	rules    RulesScorer
	sender   *SenderScorer
	semantic *SemanticScorer
	text     *utils.TextProcessor
	logger   *zap.Logger
	now      Clock
}

// NewClassifier creates a classification orchestrator.
func NewClassifier(
	sender *SenderScorer,
	semantic *SemanticScorer,
	text *utils.TextProcessor,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		sender:   sender,
		semantic: semantic,
		text:     text,
		logger:   logger,
		now:      time.Now,
	}
}

// Classify scores an email and assembles a record stamped with the current
// global version. It never fails: every degraded signal contributes zero.
func (c *Classifier) Classify(ctx context.Context, userID string, email *Email) *ClassificationRecord {
	body := email.Body
	if body == "" {
		body = email.Preview
	}

	scored := &Email{
		ThreadID: email.ThreadID,
		Sender:   email.Sender,
		Subject:  email.Subject,
		Preview:  email.Preview,
		Body:     c.text.ProcessText(body, bodyExcerptLimit),
	}

	rules := c.rules.Score(scored)
	sender := c.sender.Score(ctx, userID, scored)
	semantic := c.semantic.Score(ctx, scored)
	total := Combine(rules, sender, semantic)
	category := ResolvePriority(total)

	c.logger.Debug("Classified thread",
		zap.String("user_id", userID),
		zap.String("thread_id", email.ThreadID),
		zap.String("category", string(category)))

	return &ClassificationRecord{
		UserID:   userID,
		ThreadID: email.ThreadID,
		Sender:   email.Sender,
		Subject:  email.Subject,
		Category: category,
		Scores: ScoreBreakdown{
			Rules:    rules,
			Sender:   sender,
			Semantic: semantic,
			Total:    total,
		},
		ClassifiedAt: c.now(),
		Version:      ClassificationVersion,
	}
}
