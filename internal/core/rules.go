package core

import (
	"strings"
)

// Keyword lists and point values are empirically tuned. Treat them as fixed
// constants; do not re-derive "equivalent" thresholds.
var (
	urgencyKeywords = []string{
		"urgent", "asap", "emergency", "critical", "immediately",
		"right away", "server down", "outage", "deadline today",
		"time sensitive",
	}
	invoiceKeywords = []string{
		"invoice", "payment due", "amount due", "billing statement",
		"receipt for your", "past due", "wire transfer", "payment received",
	}
	newsletterKeywords = []string{
		"unsubscribe", "newsletter", "view in browser", "view this email in",
		"email preferences", "weekly digest", "daily digest",
	}
	connectionKeywords = []string{
		"wants to connect", "connection request", "invitation is waiting",
		"new follower", "viewed your profile",
	}
	actionKeywords = []string{
		"please review", "action required", "action needed", "please approve",
		"sign off", "can you take a look", "needs your",
	}
	waitingKeywords = []string{
		"following up", "any update", "just checking in", "awaiting your",
		"haven't heard back", "circling back",
	}
)

// RulesScorer assigns per-category points from fixed keyword and phrase
// lists. Pure function over the email text: no I/O, never fails.
type RulesScorer struct{}

// Score lower-cases subject, body and preview into one blob and accumulates
// points for every rule that fires. Scores are additive and uncapped.
func (RulesScorer) Score(email *Email) ScoreVector {
	blob := strings.ToLower(email.Subject + "\n" + email.Body + "\n" + email.Preview)
	v := NewScoreVector()

	if containsAny(blob, urgencyKeywords) {
		v.Add(CategoryUrgent, 30)
	}
	if strings.Count(email.Subject, "!") >= 3 {
		v.Add(CategoryUrgent, 15)
	}
	if strings.Contains(blob, "reminder") &&
		(strings.Contains(blob, "meeting") || strings.Contains(blob, "appointment")) {
		v.Add(CategoryUrgent, 40)
		v.Add(CategoryAction, 15)
	}
	if containsAny(blob, invoiceKeywords) {
		v.Add(CategoryInvoices, 30)
	}
	if containsAny(blob, newsletterKeywords) {
		v.Add(CategoryNewsletters, 25)
	}
	if containsAny(blob, connectionKeywords) {
		v.Add(CategoryNewsletters, 30)
	}
	if containsAny(blob, actionKeywords) {
		v.Add(CategoryAction, 20)
	}
	if containsAny(blob, waitingKeywords) {
		v.Add(CategoryWaiting, 25)
	}

	return v
}

func containsAny(blob string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(blob, kw) {
			return true
		}
	}
	return false
}
