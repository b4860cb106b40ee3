package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/gmailsource"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

// SourceFactory creates message sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new message source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSource creates a message source based on the configuration
func (f *SourceFactory) CreateSource() (core.MessageSource, error) {
	sourceCfg := f.cfg.GetSource()

	switch sourceCfg.Type {
	case "gmail":
		return gmailsource.New(context.Background(), sourceCfg.CredentialsFile, f.logger)
	default:
		return nil, fmt.Errorf("unsupported message source type: %s", sourceCfg.Type)
	}
}
