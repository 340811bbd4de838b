package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"taxengine/internal/model"
)

// DefaultRuleTTL is how long a filtered rule list stays valid. Staleness up
// to the TTL is an accepted tradeoff; rule mutations call Flush for strict
// freshness.
const DefaultRuleTTL = 30 * time.Minute

// DefaultCleanupInterval is how often expired entries are evicted.
const DefaultCleanupInterval = 1 * time.Hour

// RuleCache memoizes filtered, sorted rule lists per (taxType, day) key.
// It is an explicit dependency injected into the rule engine, not a
// process-wide singleton. Entries are immutable once stored; concurrent
// writes to the same key are last-writer-wins.
type RuleCache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewRuleCache builds a cache with the given TTL. A non-positive TTL falls
// back to DefaultRuleTTL.
func NewRuleCache(ttl time.Duration) *RuleCache {
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	return &RuleCache{
		store: gocache.New(ttl, DefaultCleanupInterval),
		ttl:   ttl,
	}
}

func ruleKey(taxType string, effectiveDate time.Time) string {
	return fmt.Sprintf("tax_rules:%s:%s", taxType, effectiveDate.Format("2006-01-02"))
}

// Get returns the cached rule list for taxType on the day of effectiveDate.
// An expired or missing entry is a miss.
func (c *RuleCache) Get(taxType string, effectiveDate time.Time) ([]model.TaxRule, bool) {
	v, ok := c.store.Get(ruleKey(taxType, effectiveDate))
	if !ok {
		return nil, false
	}
	rules, ok := v.([]model.TaxRule)
	return rules, ok
}

// Put stores rules under the (taxType, day) key, overwriting any existing
// entry with a fresh expiry.
func (c *RuleCache) Put(taxType string, effectiveDate time.Time, rules []model.TaxRule) {
	c.store.Set(ruleKey(taxType, effectiveDate), rules, c.ttl)
}

// Flush drops every entry. Called after rule mutations so the next lookup
// reloads from the repository.
func (c *RuleCache) Flush() {
	c.store.Flush()
}
