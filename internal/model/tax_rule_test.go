package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestCanonicalTaxType(t *testing.T) {
	for _, raw := range []string{"Income", "income", "INCOME", "iNcOmE"} {
		got, ok := CanonicalTaxType(raw)
		require.True(t, ok, raw)
		assert.Equal(t, TaxTypeIncome, got)
	}

	_, ok := CanonicalTaxType("Gambling")
	assert.False(t, ok)
	_, ok = CanonicalTaxType("")
	assert.False(t, ok)
}

func TestIsProgressive(t *testing.T) {
	assert.True(t, IsProgressive("Income"))
	assert.True(t, IsProgressive("income"))
	assert.False(t, IsProgressive("Sales"))
	assert.False(t, IsProgressive("Property"))
	assert.False(t, IsProgressive("Corporate"))
}

func TestTaxRule_AppliesToAmount(t *testing.T) {
	rule := TaxRule{MinAmount: dp("100"), MaxAmount: dp("500")}

	// Both bounds are inclusive.
	assert.True(t, rule.AppliesToAmount(d("100")))
	assert.True(t, rule.AppliesToAmount(d("300")))
	assert.True(t, rule.AppliesToAmount(d("500")))
	assert.False(t, rule.AppliesToAmount(d("99.99")))
	assert.False(t, rule.AppliesToAmount(d("500.01")))

	open := TaxRule{}
	assert.True(t, open.AppliesToAmount(decimal.Zero))
	assert.True(t, open.AppliesToAmount(d("999999")))
}

func TestTaxRule_IsEffectiveOn(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	rule := TaxRule{IsActive: true, EffectiveFrom: from, EffectiveTo: &to}

	assert.True(t, rule.IsEffectiveOn(from))
	assert.True(t, rule.IsEffectiveOn(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, rule.IsEffectiveOn(to))
	assert.False(t, rule.IsEffectiveOn(from.AddDate(0, 0, -1)))
	assert.False(t, rule.IsEffectiveOn(to.AddDate(0, 0, 1)))

	rule.IsActive = false
	assert.False(t, rule.IsEffectiveOn(from), "inactive rules are never effective")

	openEnded := TaxRule{IsActive: true, EffectiveFrom: from}
	assert.True(t, openEnded.IsEffectiveOn(from.AddDate(10, 0, 0)))
}

func TestTaxRule_BracketMin(t *testing.T) {
	assert.True(t, (&TaxRule{}).BracketMin().IsZero())
	assert.True(t, (&TaxRule{MinAmount: dp("1000.01")}).BracketMin().Equal(d("1000.01")))
}

func TestTaxRule_Deactivate(t *testing.T) {
	rule := TaxRule{IsActive: true, EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	rule.Deactivate(now)

	assert.False(t, rule.IsActive)
	require.NotNil(t, rule.EffectiveTo)
	assert.Equal(t, now, *rule.EffectiveTo)
	require.NotNil(t, rule.DeactivatedAt)
	assert.Equal(t, now, *rule.DeactivatedAt)
	assert.False(t, rule.IsEffectiveOn(now.AddDate(0, 0, 1)))
}
