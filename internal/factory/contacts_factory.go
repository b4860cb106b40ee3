package factory

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/adapters/contacts"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
)

// ContactsFactory creates contacts directories based on configuration
type ContactsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewContactsFactory creates a new contacts directory factory
func NewContactsFactory(cfg *config.Config, logger *zap.Logger) *ContactsFactory {
	return &ContactsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDirectory creates a contacts directory based on the configuration.
// A disabled integration still satisfies the port with an empty directory
// so the sender scorer degrades to domain heuristics only.
func (f *ContactsFactory) CreateDirectory() (core.ContactsDirectory, error) {
	contactsCfg := f.cfg.GetContacts()

	if !contactsCfg.Enabled {
		f.logger.Info("Contacts integration disabled")
		return contacts.Disabled{}, nil
	}

	return contacts.New(context.Background(), contactsCfg.CredentialsFile, f.logger)
}
