package core

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/domains"
)

// ReputationCache holds each user's known contacts for the lifetime of the
// process. It is populated at most once per user on first use and read-only
// afterward; stale contact data is acceptable until restart. A failed load
// is not cached, so the next call retries.
type ReputationCache struct {
	mu        sync.RWMutex
	users     map[string]map[string]Contact
	directory ContactsDirectory
	logger    *zap.Logger
}

// NewReputationCache creates an empty cache over a contacts directory.
func NewReputationCache(directory ContactsDirectory, logger *zap.Logger) *ReputationCache {
	return &ReputationCache{
		users:     make(map[string]map[string]Contact),
		directory: directory,
		logger:    logger,
	}
}

// Contacts returns the user's known contacts, warming the cache on first
// call. Returns nil when the directory is unavailable.
func (c *ReputationCache) Contacts(ctx context.Context, userID string) map[string]Contact {
	c.mu.RLock()
	contacts, ok := c.users[userID]
	c.mu.RUnlock()
	if ok {
		return contacts
	}
	return c.warm(ctx, userID)
}

func (c *ReputationCache) warm(ctx context.Context, userID string) map[string]Contact {
	if c.directory == nil {
		return nil
	}

	found, err := c.directory.Find(ctx, userID)
	if err != nil {
		c.logger.Warn("Contacts lookup unavailable",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have warmed the same user concurrently; keep
	// the first result.
	if existing, ok := c.users[userID]; ok {
		return existing
	}
	c.users[userID] = found
	c.logger.Debug("Warmed sender reputation cache",
		zap.String("user_id", userID),
		zap.Int("contacts", len(found)))
	return found
}

// SenderScorer scores an email from who sent it: known contacts, client
// group membership, and domain reputation heuristics.
type SenderScorer struct {
	cache   *ReputationCache
	domains *domains.Matcher
	logger  *zap.Logger
}

// NewSenderScorer creates a sender-reputation scorer.
func NewSenderScorer(cache *ReputationCache, matcher *domains.Matcher, logger *zap.Logger) *SenderScorer {
	return &SenderScorer{
		cache:   cache,
		domains: matcher,
		logger:  logger,
	}
}

// Score maps the sender address to a score vector. Returns an all-zero
// vector when the contacts lookup is unavailable or the sender is unknown;
// it never fails.
func (s *SenderScorer) Score(ctx context.Context, userID string, email *Email) ScoreVector {
	v := NewScoreVector()

	addr := domains.BareAddress(email.Sender)
	if addr == "" {
		return v
	}

	if contact, ok := s.cache.Contacts(ctx, userID)[addr]; ok {
		v.Add(CategoryClients, 30)
		if inClientGroup(contact.Groups) {
			v.Add(CategoryClients, 30)
		}
	}

	switch d := domains.Domain(addr); {
	case s.domains.IsCritical(d):
		v.Add(CategoryUrgent, 15)
		v.Add(CategoryAction, 10)
	case s.domains.IsBilling(d):
		v.Add(CategoryInvoices, 25)
	case s.domains.IsBulk(d):
		v.Add(CategoryNewsletters, 20)
	}

	return v
}

func inClientGroup(groups []string) bool {
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g), "client") {
			return true
		}
	}
	return false
}
