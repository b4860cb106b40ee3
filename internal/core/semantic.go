package core

import (
	"context"

	"go.uber.org/zap"
)

// SemanticScorer turns the oracle's label into partial category scores.
// Any oracle failure degrades to an all-zero vector; it never fails.
type SemanticScorer struct {
	oracle SemanticClassifier
	logger *zap.Logger
}

// NewSemanticScorer creates a scorer over a semantic classification oracle.
func NewSemanticScorer(oracle SemanticClassifier, logger *zap.Logger) *SemanticScorer {
	return &SemanticScorer{
		oracle: oracle,
		logger: logger,
	}
}

// Score asks the oracle for a label and maps it through the fixed lookup
// table. Timeouts, malformed responses and unrecognized labels all
// contribute zero.
func (s *SemanticScorer) Score(ctx context.Context, email *Email) ScoreVector {
	if s.oracle == nil {
		return NewScoreVector()
	}

	label, err := s.oracle.ClassifyLabel(ctx, email)
	if err != nil {
		s.logger.Warn("Semantic classification failed",
			zap.String("thread_id", email.ThreadID),
			zap.Error(err))
		return NewScoreVector()
	}

	if label == LabelUnrecognized {
		s.logger.Debug("Oracle returned unrecognized label",
			zap.String("thread_id", email.ThreadID))
	}

	return label.Contribution()
}
