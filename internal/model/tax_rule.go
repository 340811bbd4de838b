package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxType enum constants
const (
	TaxTypeIncome    = "Income"
	TaxTypeSales     = "Sales"
	TaxTypeProperty  = "Property"
	TaxTypeCorporate = "Corporate"
)

// AllTaxTypes lists every tax type the engine accepts.
var AllTaxTypes = []string{TaxTypeIncome, TaxTypeSales, TaxTypeProperty, TaxTypeCorporate}

// CanonicalTaxType resolves a tax type case-insensitively and returns its
// canonical spelling. The second return is false for unknown types.
func CanonicalTaxType(taxType string) (string, bool) {
	for _, t := range AllTaxTypes {
		if strings.EqualFold(t, taxType) {
			return t, true
		}
	}
	return "", false
}

// IsValidTaxType reports whether taxType is one of the supported types.
func IsValidTaxType(taxType string) bool {
	_, ok := CanonicalTaxType(taxType)
	return ok
}

// IsProgressive reports whether a tax type is taxed with progressive
// brackets. Only income tax is progressive; sales, property and corporate
// taxes apply a single flat rule.
func IsProgressive(taxType string) bool {
	return strings.EqualFold(taxType, TaxTypeIncome)
}

// TaxRule stores one time-bounded, prioritized tax rule. Rules with
// MinAmount and MaxAmount set act as brackets for progressive types; for
// flat types the bounds narrow which amounts the rule applies to.
type TaxRule struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaxType       string           `gorm:"type:varchar(20);not null;index" json:"tax_type"` // Income, Sales, Property, Corporate
	RuleName      string           `gorm:"type:varchar(100);not null" json:"rule_name"`
	MinAmount     *decimal.Decimal `gorm:"type:decimal(18,2)" json:"min_amount"` // inclusive lower bound, nullable = open
	MaxAmount     *decimal.Decimal `gorm:"type:decimal(18,2)" json:"max_amount"` // inclusive upper bound, nullable = open
	Rate          decimal.Decimal  `gorm:"type:decimal(10,4);not null" json:"rate"` // fraction in [0,1], e.g. 0.045 = 4.5%
	FlatAmount    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"flat_amount"`
	EffectiveFrom time.Time        `gorm:"type:date;not null;index" json:"effective_from"`
	EffectiveTo   *time.Time       `gorm:"type:date;index" json:"effective_to"` // nullable = open-ended
	Priority      int              `gorm:"not null;default:100" json:"priority"` // lower sorts first
	IsActive      bool             `gorm:"not null;default:true" json:"is_active"`
	DeactivatedAt *time.Time       `json:"deactivated_at"`
	Conditions    RuleConditions   `gorm:"type:jsonb" json:"conditions"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// AppliesToAmount reports whether amount falls inside the rule's
// [MinAmount, MaxAmount] window. An absent bound is open.
func (r *TaxRule) AppliesToAmount(amount decimal.Decimal) bool {
	if r.MinAmount != nil && amount.LessThan(*r.MinAmount) {
		return false
	}
	if r.MaxAmount != nil && amount.GreaterThan(*r.MaxAmount) {
		return false
	}
	return true
}

// IsEffectiveOn reports whether the rule is active and its effective window
// covers d.
func (r *TaxRule) IsEffectiveOn(d time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.EffectiveFrom.After(d) {
		return false
	}
	if r.EffectiveTo != nil && r.EffectiveTo.Before(d) {
		return false
	}
	return true
}

// BracketMin returns the bracket's lower bound, treating an absent
// MinAmount as zero.
func (r *TaxRule) BracketMin() decimal.Decimal {
	if r.MinAmount == nil {
		return decimal.Zero
	}
	return *r.MinAmount
}

// Deactivate transitions the rule from Active to Inactive. It closes the
// effective window at now and records the transition timestamp. Deactivated
// rules are never hard-deleted.
func (r *TaxRule) Deactivate(now time.Time) {
	r.IsActive = false
	r.EffectiveTo = &now
	r.DeactivatedAt = &now
}
