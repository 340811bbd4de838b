package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxengine/internal/model"
)

var day = time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)

func rules(names ...string) []model.TaxRule {
	out := make([]model.TaxRule, len(names))
	for i, n := range names {
		out[i] = model.TaxRule{TaxType: model.TaxTypeSales, RuleName: n}
	}
	return out
}

func TestRuleCache_PutGet(t *testing.T) {
	c := NewRuleCache(time.Minute)

	_, ok := c.Get(model.TaxTypeSales, day)
	assert.False(t, ok)

	c.Put(model.TaxTypeSales, day, rules("Standard Sales Tax"))

	got, ok := c.Get(model.TaxTypeSales, day)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Standard Sales Tax", got[0].RuleName)
}

func TestRuleCache_KeyIsTruncatedToDay(t *testing.T) {
	c := NewRuleCache(time.Minute)
	c.Put(model.TaxTypeSales, day, rules("A"))

	// Any time on the same day hits the same entry.
	_, ok := c.Get(model.TaxTypeSales, day.Add(10*time.Hour))
	assert.True(t, ok)

	// The next day is a different key.
	_, ok = c.Get(model.TaxTypeSales, day.AddDate(0, 0, 1))
	assert.False(t, ok)

	// So is a different tax type on the same day.
	_, ok = c.Get(model.TaxTypeIncome, day)
	assert.False(t, ok)
}

func TestRuleCache_Expiry(t *testing.T) {
	c := NewRuleCache(20 * time.Millisecond)
	c.Put(model.TaxTypeSales, day, rules("A"))

	_, ok := c.Get(model.TaxTypeSales, day)
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get(model.TaxTypeSales, day)
	assert.False(t, ok, "expired entry should be a miss")
}

func TestRuleCache_PutOverwrites(t *testing.T) {
	c := NewRuleCache(time.Minute)
	c.Put(model.TaxTypeSales, day, rules("Old"))
	c.Put(model.TaxTypeSales, day, rules("New"))

	got, ok := c.Get(model.TaxTypeSales, day)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "New", got[0].RuleName)
}

func TestRuleCache_Flush(t *testing.T) {
	c := NewRuleCache(time.Minute)
	c.Put(model.TaxTypeSales, day, rules("A"))
	c.Put(model.TaxTypeIncome, day, rules("B"))

	c.Flush()

	_, ok := c.Get(model.TaxTypeSales, day)
	assert.False(t, ok)
	_, ok = c.Get(model.TaxTypeIncome, day)
	assert.False(t, ok)
}

func TestNewRuleCache_DefaultTTL(t *testing.T) {
	c := NewRuleCache(0)
	assert.Equal(t, DefaultRuleTTL, c.ttl)
}
