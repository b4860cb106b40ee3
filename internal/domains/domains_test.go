package domains

import "testing"

func TestBareAddress(t *testing.T) {
	tests := []struct {
		sender string
		want   string
	}{
		{"Ada Lovelace <Ada@Example.com>", "ada@example.com"},
		{"<ops@pagerduty.com>", "ops@pagerduty.com"},
		{"billing@stripe.com", "billing@stripe.com"},
		{"  News@Substack.com  ", "news@substack.com"},
		{"not an address", ""},
		{"two@at@signs", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := BareAddress(tt.sender); got != tt.want {
			t.Errorf("BareAddress(%q) = %q, want %q", tt.sender, got, tt.want)
		}
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"ada@example.com", "example.com"},
		{"ops@Alerts.PagerDuty.com", "alerts.pagerduty.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Domain(tt.address); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.address, got, tt.want)
		}
	}
}

func TestMatcherDefaults(t *testing.T) {
	m := NewMatcher(nil, nil, nil, nil)

	if !m.IsCritical("aws.amazon.com") {
		t.Error("aws.amazon.com should be critical")
	}
	if !m.IsCritical("alerts.pagerduty.com") {
		t.Error("subdomains of critical domains should match")
	}
	if m.IsCritical("notpagerduty.com") {
		t.Error("suffix match must be on a domain boundary")
	}
	if !m.IsBilling("stripe.com") {
		t.Error("stripe.com should be billing")
	}
	if !m.IsBulk("linkedin.com") {
		t.Error("linkedin.com should be bulk")
	}
	if m.IsBulk("example.com") {
		t.Error("example.com should not be bulk")
	}
	if m.IsCritical("") {
		t.Error("empty domain never matches")
	}
}

func TestMatcherExtras(t *testing.T) {
	m := NewMatcher([]string{" Status.Internal.Example "}, nil, []string{"promo.example"}, nil)

	if !m.IsCritical("status.internal.example") {
		t.Error("extra critical domain should match after normalization")
	}
	if !m.IsBulk("mail.promo.example") {
		t.Error("subdomain of extra bulk domain should match")
	}
	if !m.IsCritical("sentry.io") {
		t.Error("extras must extend, not replace, the built-in lists")
	}
}
