package core

import (
	"strings"
)

// Label is the closed set of answers the semantic classification oracle
// may return. Anything outside the set parses to LabelUnrecognized, which
// contributes nothing to the score.
type Label int

const (
	LabelUnrecognized Label = iota
	LabelUrgent
	LabelImportant
	LabelAction
	LabelClient
	LabelInvoice
	LabelNewsletter
	LabelWaiting
	LabelNormal
)

var labelNames = map[Label]string{
	LabelUnrecognized: "UNRECOGNIZED",
	LabelUrgent:       "URGENT",
	LabelImportant:    "IMPORTANT",
	LabelAction:       "ACTION",
	LabelClient:       "CLIENT",
	LabelInvoice:      "INVOICE",
	LabelNewsletter:   "NEWSLETTER",
	LabelWaiting:      "WAITING",
	LabelNormal:       "NORMAL",
}

// String returns the wire form of the label.
func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return "UNRECOGNIZED"
}

// ParseLabel maps oracle output to a Label. It tolerates surrounding
// whitespace, punctuation and trailing prose by keying on the first token.
func ParseLabel(raw string) Label {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if fields := strings.FieldsFunc(token, func(r rune) bool {
		return !('A' <= r && r <= 'Z')
	}); len(fields) > 0 {
		token = fields[0]
	}

	switch token {
	case "URGENT":
		return LabelUrgent
	case "IMPORTANT":
		return LabelImportant
	case "ACTION":
		return LabelAction
	case "CLIENT":
		return LabelClient
	case "INVOICE":
		return LabelInvoice
	case "NEWSLETTER":
		return LabelNewsletter
	case "WAITING":
		return LabelWaiting
	case "NORMAL":
		return LabelNormal
	default:
		return LabelUnrecognized
	}
}

// Contribution maps a label to its partial category scores.
func (l Label) Contribution() ScoreVector {
	v := NewScoreVector()
	switch l {
	case LabelUrgent:
		v.Add(CategoryUrgent, 60)
	case LabelImportant:
		v.Add(CategoryUrgent, 20)
		v.Add(CategoryAction, 15)
	case LabelAction:
		v.Add(CategoryAction, 40)
	case LabelClient:
		v.Add(CategoryClients, 40)
	case LabelInvoice:
		v.Add(CategoryInvoices, 50)
	case LabelNewsletter:
		v.Add(CategoryNewsletters, 40)
	case LabelWaiting:
		v.Add(CategoryWaiting, 45)
	case LabelNormal, LabelUnrecognized:
		// No contribution.
	}
	return v
}
