// Package domains classifies sender domains against fixed reputation lists.
package domains

import (
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// Built-in reputation lists. Config may extend but never replaces them.
var (
	defaultCriticalDomains = []string{
		"aws.amazon.com",
		"amazonaws.com",
		"pagerduty.com",
		"opsgenie.com",
		"statuspage.io",
		"datadoghq.com",
		"sentry.io",
		"cloudflare.com",
	}
	defaultBillingDomains = []string{
		"stripe.com",
		"paypal.com",
		"bill.com",
		"intuit.com",
		"xero.com",
		"squareup.com",
		"brex.com",
	}
	defaultBulkDomains = []string{
		"linkedin.com",
		"facebookmail.com",
		"twitter.com",
		"x.com",
		"instagram.com",
		"medium.com",
		"substack.com",
		"mailchimp.com",
		"sendgrid.net",
		"beehiiv.com",
	}
)

// Matcher answers which reputation list, if any, a sender domain belongs to.
type Matcher struct {
	critical []string
	billing  []string
	bulk     []string
	logger   *zap.Logger
}

// NewMatcher builds a matcher from the built-in lists plus any extras.
// Domains are normalized to lower case; matching includes subdomains.
func NewMatcher(extraCritical, extraBilling, extraBulk []string, logger *zap.Logger) *Matcher {
	m := &Matcher{
		critical: normalize(defaultCriticalDomains, extraCritical),
		billing:  normalize(defaultBillingDomains, extraBilling),
		bulk:     normalize(defaultBulkDomains, extraBulk),
		logger:   logger,
	}

	if logger != nil && (len(extraCritical)+len(extraBilling)+len(extraBulk)) > 0 {
		logger.Info("Extended sender reputation lists",
			zap.Int("critical", len(extraCritical)),
			zap.Int("billing", len(extraBilling)),
			zap.Int("bulk", len(extraBulk)))
	}

	return m
}

// IsCritical reports whether the domain belongs to a known
// critical-infrastructure sender.
func (m *Matcher) IsCritical(domain string) bool {
	return matches(domain, m.critical)
}

// IsBilling reports whether the domain belongs to a known billing processor.
func (m *Matcher) IsBilling(domain string) bool {
	return matches(domain, m.billing)
}

// IsBulk reports whether the domain belongs to a known bulk-mail or
// social-network sender.
func (m *Matcher) IsBulk(domain string) bool {
	return matches(domain, m.bulk)
}

// BareAddress extracts the lower-cased bare address from a sender header
// value such as `Ada Lovelace <ada@example.com>`.
func BareAddress(sender string) string {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(sender); err == nil {
		return strings.ToLower(addr.Address)
	}
	// Header didn't parse; fall back to the raw value if it looks like an
	// address on its own.
	if strings.Count(sender, "@") == 1 && !strings.ContainsAny(sender, " <>") {
		return strings.ToLower(sender)
	}
	return ""
}

// Domain returns the domain part of a bare address, or "".
func Domain(address string) string {
	parts := strings.Split(address, "@")
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	return strings.ToLower(parts[1])
}

func normalize(defaults, extras []string) []string {
	out := make([]string, 0, len(defaults)+len(extras))
	out = append(out, defaults...)
	for _, d := range extras {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

func matches(domain string, list []string) bool {
	if domain == "" {
		return false
	}
	domain = strings.ToLower(domain)
	for _, entry := range list {
		if domain == entry || strings.HasSuffix(domain, "."+entry) {
			return true
		}
	}
	return false
}
