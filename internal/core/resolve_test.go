package core

import "testing"

func TestResolvePriority(t *testing.T) {
	tests := []struct {
		name   string
		scores ScoreVector
		want   Category
	}{
		{
			name:   "newsletters beat a much higher urgent score",
			scores: ScoreVector{CategoryNewsletters: 35, CategoryUrgent: 80},
			want:   CategoryNewsletters,
		},
		{
			name:   "urgent at threshold",
			scores: ScoreVector{CategoryUrgent: 50},
			want:   CategoryUrgent,
		},
		{
			name:   "urgent below threshold falls through to catch-all",
			scores: ScoreVector{CategoryUrgent: 49},
			want:   CategoryAction,
		},
		{
			name:   "invoices at threshold",
			scores: ScoreVector{CategoryInvoices: 60},
			want:   CategoryInvoices,
		},
		{
			name:   "invoices below urgent-level score is not enough",
			scores: ScoreVector{CategoryInvoices: 55},
			want:   CategoryNormal,
		},
		{
			name:   "clients at threshold",
			scores: ScoreVector{CategoryClients: 50},
			want:   CategoryClients,
		},
		{
			name:   "action items at threshold",
			scores: ScoreVector{CategoryAction: 35},
			want:   CategoryAction,
		},
		{
			name:   "waiting at threshold",
			scores: ScoreVector{CategoryWaiting: 40},
			want:   CategoryWaiting,
		},
		{
			name:   "catch-all on tiny action score",
			scores: ScoreVector{CategoryAction: 5, CategoryUrgent: 1},
			want:   CategoryAction,
		},
		{
			name:   "catch-all on tiny urgent score alone",
			scores: ScoreVector{CategoryUrgent: 1},
			want:   CategoryAction,
		},
		{
			name:   "waiting below threshold without urgency is normal",
			scores: ScoreVector{CategoryWaiting: 39},
			want:   CategoryNormal,
		},
		{
			name:   "zero vector is normal",
			scores: NewScoreVector(),
			want:   CategoryNormal,
		},
		{
			name:   "nil vector is normal",
			scores: nil,
			want:   CategoryNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePriority(tt.scores); got != tt.want {
				t.Errorf("ResolvePriority(%v) = %s, want %s", tt.scores, got, tt.want)
			}
		})
	}
}

func TestCombineSumsPerCategory(t *testing.T) {
	a := ScoreVector{CategoryUrgent: 30, CategoryAction: 10}
	b := ScoreVector{CategoryUrgent: 15, CategoryInvoices: 25}
	c := ScoreVector{CategoryAction: 10}

	got := Combine(a, b, c)

	if got[CategoryUrgent] != 45 {
		t.Errorf("urgent = %d, want 45", got[CategoryUrgent])
	}
	if got[CategoryAction] != 20 {
		t.Errorf("action_items = %d, want 20", got[CategoryAction])
	}
	if got[CategoryInvoices] != 25 {
		t.Errorf("invoices = %d, want 25", got[CategoryInvoices])
	}
	if got[CategoryNewsletters] != 0 {
		t.Errorf("newsletters = %d, want 0", got[CategoryNewsletters])
	}
}

func TestCombineDoesNotMutateInputs(t *testing.T) {
	a := ScoreVector{CategoryUrgent: 30}
	b := ScoreVector{CategoryUrgent: 20}
	_ = Combine(a, b)
	if a[CategoryUrgent] != 30 || b[CategoryUrgent] != 20 {
		t.Errorf("Combine mutated its inputs: %v %v", a, b)
	}
}
