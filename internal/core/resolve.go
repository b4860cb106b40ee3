package core

// Resolver thresholds. The values are intentionally asymmetric: newsletters
// are checked first to suppress noise, and invoices/clients require stronger
// evidence than urgent.
const (
	thresholdNewsletters = 30
	thresholdUrgent      = 50
	thresholdInvoices    = 60
	thresholdClients     = 50
	thresholdAction      = 35
	thresholdWaiting     = 40
)

// Combine returns the elementwise sum of the given score vectors.
func Combine(vectors ...ScoreVector) ScoreVector {
	total := NewScoreVector()
	for _, v := range vectors {
		for cat, n := range v {
			total[cat] += n
		}
	}
	return total
}

// ResolvePriority maps a combined score vector to exactly one category.
// The chain is ordered and first-match-wins; reordering it changes behavior
// because the same signal often feeds several overlapping categories. The
// catch-all before the default exists because most genuinely actionable mail
// scores slightly above zero without crossing the action_items threshold.
func ResolvePriority(total ScoreVector) Category {
	switch {
	case total[CategoryNewsletters] >= thresholdNewsletters:
		return CategoryNewsletters
	case total[CategoryUrgent] >= thresholdUrgent:
		return CategoryUrgent
	case total[CategoryInvoices] >= thresholdInvoices:
		return CategoryInvoices
	case total[CategoryClients] >= thresholdClients:
		return CategoryClients
	case total[CategoryAction] >= thresholdAction:
		return CategoryAction
	case total[CategoryWaiting] >= thresholdWaiting:
		return CategoryWaiting
	case total[CategoryAction] > 0 || total[CategoryUrgent] > 0:
		return CategoryAction
	default:
		return CategoryNormal
	}
}
