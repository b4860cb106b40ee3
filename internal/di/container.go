package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/domains"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewContactsFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register semantic oracle
	if err := container.Provide(func(f *factory.LLMFactory) (core.SemanticClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register classification store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ClassificationStore, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}

	// Register message source
	if err := container.Provide(func(f *factory.SourceFactory) (core.MessageSource, error) {
		return f.CreateSource()
	}); err != nil {
		return nil, err
	}

	// Register contacts directory
	if err := container.Provide(func(f *factory.ContactsFactory) (core.ContactsDirectory, error) {
		return f.CreateDirectory()
	}); err != nil {
		return nil, err
	}

	// Register domain reputation matcher
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *domains.Matcher {
		senderCfg := cfg.GetSender()
		return domains.NewMatcher(
			senderCfg.CriticalDomains,
			senderCfg.BillingDomains,
			senderCfg.BulkDomains,
			logger,
		)
	}); err != nil {
		return nil, err
	}

	// Register scoring pipeline
	if err := container.Provide(core.NewReputationCache); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewSenderScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewSemanticScorer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewClassifier); err != nil {
		return nil, err
	}

	// Register background runner
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *core.BackgroundRunner {
		return core.NewBackgroundRunner(cfg.GetTriage().BackgroundWorkers, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(r *core.BackgroundRunner) core.TaskRunner {
		return r
	}); err != nil {
		return nil, err
	}

	// Register triage tuning options
	if err := container.Provide(func(cfg *config.Config) core.TriageOptions {
		triageCfg := cfg.GetTriage()
		return core.TriageOptions{
			Query:           cfg.GetSource().Query,
			BatchFloor:      triageCfg.BatchFloor,
			BatchCeiling:    triageCfg.BatchCeiling,
			GapFillPage:     int64(triageCfg.GapFillPage),
			GapFillCap:      triageCfg.GapFillCap,
			StaleRecheckCap: triageCfg.StaleRecheckCap,
			DefaultLimit:    triageCfg.DefaultLimit,
		}
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(core.NewTriageService); err != nil {
		return nil, err
	}

	return container, nil
}
