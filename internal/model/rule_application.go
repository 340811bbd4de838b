package model

import "github.com/shopspring/decimal"

// RuleApplication records one rule's contribution to a single calculation.
// Instances are produced fresh per calculation and never mutated; min/max
// are echoed for traceability.
type RuleApplication struct {
	RuleName         string           `json:"rule_name"`
	Rate             decimal.Decimal  `json:"rate"`
	FlatAmount       decimal.Decimal  `json:"flat_amount"`
	CalculatedAmount decimal.Decimal  `json:"calculated_amount"`
	MinAmount        *decimal.Decimal `json:"min_amount"`
	MaxAmount        *decimal.Decimal `json:"max_amount"`
}
