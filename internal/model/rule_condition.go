package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Condition kinds. Rule criteria are a closed set of tagged variants
// evaluated by a small interpreter, not a free-form expression blob.
const (
	ConditionAmountRange       = "amount_range"
	ConditionCategoryEquals    = "category_equals"
	ConditionDaysLateThreshold = "days_late_threshold"
)

// EvalContext carries the per-request facts conditions are evaluated
// against.
type EvalContext struct {
	Amount       decimal.Decimal
	ItemCategory string
	DaysLate     int
}

// RuleCondition is one criterion attached to a tax rule. Only the fields
// for the tagged Kind are meaningful.
type RuleCondition struct {
	Kind      string           `json:"kind"`
	Category  string           `json:"category,omitempty"`   // category_equals
	MinDays   int              `json:"min_days,omitempty"`   // days_late_threshold
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"` // amount_range
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"` // amount_range
}

// KnownConditionKind reports whether kind is one of the supported variants.
func KnownConditionKind(kind string) bool {
	switch kind {
	case ConditionAmountRange, ConditionCategoryEquals, ConditionDaysLateThreshold:
		return true
	}
	return false
}

// Matches evaluates the condition against ec. Unknown kinds never match, so
// a rule carrying a kind this build does not understand is simply skipped.
func (c RuleCondition) Matches(ec EvalContext) bool {
	switch c.Kind {
	case ConditionAmountRange:
		if c.MinAmount != nil && ec.Amount.LessThan(*c.MinAmount) {
			return false
		}
		if c.MaxAmount != nil && ec.Amount.GreaterThan(*c.MaxAmount) {
			return false
		}
		return true
	case ConditionCategoryEquals:
		return strings.EqualFold(c.Category, ec.ItemCategory)
	case ConditionDaysLateThreshold:
		return ec.DaysLate >= c.MinDays
	default:
		return false
	}
}

// RuleConditions is the JSONB-persisted condition list of a rule.
type RuleConditions []RuleCondition

// MatchesAll reports whether every condition matches ec. A rule with no
// conditions always matches.
func (cs RuleConditions) MatchesAll(ec EvalContext) bool {
	for _, c := range cs {
		if !c.Matches(ec) {
			return false
		}
	}
	return true
}

// Value implements driver.Valuer for JSONB storage.
func (cs RuleConditions) Value() (driver.Value, error) {
	if len(cs) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(cs)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB storage.
func (cs *RuleConditions) Scan(value interface{}) error {
	if value == nil {
		*cs = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported conditions column type %T", value)
	}
	if len(b) == 0 {
		*cs = nil
		return nil
	}
	return json.Unmarshal(b, cs)
}
