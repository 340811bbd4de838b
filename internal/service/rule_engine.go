package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"taxengine/internal/cache"
	"taxengine/internal/model"
)

// RuleSource supplies the full rule set for a tax type. It is the only
// storage capability the engine needs; repository.TaxRuleRepository
// satisfies it.
type RuleSource interface {
	FindByType(ctx context.Context, taxType string) ([]model.TaxRule, error)
}

// RuleEngine selects the rules in force on a date and applies them to a
// taxable amount. Filtering, sorting and rate application are pure; the
// cache is the only shared state and its entries are immutable once stored.
type RuleEngine interface {
	GetApplicableRules(ctx context.Context, taxType string, effectiveDate time.Time) ([]model.TaxRule, error)
	ApplyRules(ctx context.Context, taxType string, amount decimal.Decimal, effectiveDate time.Time, evalCtx model.EvalContext) ([]model.RuleApplication, error)
}

type ruleEngine struct {
	rules RuleSource
	cache *cache.RuleCache
	log   zerolog.Logger
}

func NewRuleEngine(rules RuleSource, ruleCache *cache.RuleCache, log zerolog.Logger) RuleEngine {
	return &ruleEngine{rules: rules, cache: ruleCache, log: log}
}

// GetApplicableRules returns the active rules whose effective window covers
// effectiveDate, sorted by priority then min amount. Results are memoized
// per (taxType, day) for the cache TTL.
func (e *ruleEngine) GetApplicableRules(ctx context.Context, taxType string, effectiveDate time.Time) ([]model.TaxRule, error) {
	if rules, ok := e.cache.Get(taxType, effectiveDate); ok {
		e.log.Debug().
			Str("tax_type", taxType).
			Time("effective_date", effectiveDate).
			Msg("retrieved rules from cache")
		return rules, nil
	}

	all, err := e.rules.FindByType(ctx, taxType)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for %s: %w", taxType, err)
	}

	rules := filterEffective(all, effectiveDate)
	sortRules(rules)
	e.cache.Put(taxType, effectiveDate, rules)

	e.log.Info().
		Str("tax_type", taxType).
		Time("effective_date", effectiveDate).
		Int("count", len(rules)).
		Msg("loaded applicable rules")

	return rules, nil
}

// ApplyRules resolves the applicable rules and computes the contribution of
// each. Progressive types aggregate ascending brackets; all other types
// apply the single first matching rule. An empty result is a valid no-tax
// outcome, not an error.
func (e *ruleEngine) ApplyRules(ctx context.Context, taxType string, amount decimal.Decimal, effectiveDate time.Time, evalCtx model.EvalContext) ([]model.RuleApplication, error) {
	rules, err := e.GetApplicableRules(ctx, taxType, effectiveDate)
	if err != nil {
		return nil, err
	}

	// Condition matching is per-request (category, days late), so it runs
	// after the cache, which is keyed on (taxType, day) only.
	evalCtx.Amount = amount
	matched := make([]model.TaxRule, 0, len(rules))
	for _, r := range rules {
		if r.Conditions.MatchesAll(evalCtx) {
			matched = append(matched, r)
		}
	}

	if len(matched) == 0 {
		e.log.Warn().
			Str("tax_type", taxType).
			Time("effective_date", effectiveDate).
			Msg("no applicable rules found")
		return []model.RuleApplication{}, nil
	}

	var applications []model.RuleApplication
	if model.IsProgressive(taxType) {
		applications = applyProgressive(amount, matched)
	} else {
		applications = applyFlat(amount, matched)
	}

	e.log.Debug().
		Str("tax_type", taxType).
		Str("amount", amount.String()).
		Int("applied", len(applications)).
		Msg("applied rules")

	return applications, nil
}

// filterEffective keeps the rules active and effective on d. Pure function
// of its inputs.
func filterEffective(rules []model.TaxRule, d time.Time) []model.TaxRule {
	out := make([]model.TaxRule, 0, len(rules))
	for _, r := range rules {
		if r.IsEffectiveOn(d) {
			out = append(out, r)
		}
	}
	return out
}

// sortRules orders by priority ascending, then min amount ascending with
// absent minimums treated as zero. Progressive bracket aggregation depends
// on this ordering.
func sortRules(rules []model.TaxRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].BracketMin().LessThan(rules[j].BracketMin())
	})
}

// applyProgressive treats the rules as ascending brackets and taxes the
// slice of amount inside each. Once lower brackets fully cover the amount,
// the remaining brackets cannot contribute and the loop exits early; the
// result is identical to evaluating every bracket.
func applyProgressive(amount decimal.Decimal, rules []model.TaxRule) []model.RuleApplication {
	sorted := make([]model.TaxRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BracketMin().LessThan(sorted[j].BracketMin())
	})

	applications := make([]model.RuleApplication, 0, len(sorted))
	remaining := amount

	for _, rule := range sorted {
		if remaining.Sign() <= 0 {
			break
		}

		taxable := taxableInBracket(amount, rule.BracketMin(), rule.MaxAmount)
		if taxable.Sign() <= 0 {
			continue
		}

		calculated := taxable.Mul(rule.Rate).Add(rule.FlatAmount)
		applications = append(applications, model.RuleApplication{
			RuleName:         rule.RuleName,
			Rate:             rule.Rate,
			FlatAmount:       rule.FlatAmount,
			CalculatedAmount: calculated,
			MinAmount:        rule.MinAmount,
			MaxAmount:        rule.MaxAmount,
		})
		remaining = remaining.Sub(taxable)
	}

	return applications
}

// applyFlat picks the first rule in priority order whose amount window
// covers the amount and applies it alone. No match means no tax.
func applyFlat(amount decimal.Decimal, rules []model.TaxRule) []model.RuleApplication {
	for _, rule := range rules {
		if !rule.AppliesToAmount(amount) {
			continue
		}
		calculated := amount.Mul(rule.Rate).Add(rule.FlatAmount)
		return []model.RuleApplication{{
			RuleName:         rule.RuleName,
			Rate:             rule.Rate,
			FlatAmount:       rule.FlatAmount,
			CalculatedAmount: calculated,
			MinAmount:        rule.MinAmount,
			MaxAmount:        rule.MaxAmount,
		}}
	}
	return []model.RuleApplication{}
}

// taxableInBracket returns the slice of total inside [bracketMin,
// bracketMax]. An absent max means the bracket absorbs the remainder.
func taxableInBracket(total, bracketMin decimal.Decimal, bracketMax *decimal.Decimal) decimal.Decimal {
	if total.LessThanOrEqual(bracketMin) {
		return decimal.Zero
	}

	effectiveMax := total
	if bracketMax != nil {
		effectiveMax = *bracketMax
	}

	taxable := decimal.Min(total, effectiveMax).Sub(bracketMin)
	if taxable.Sign() < 0 {
		return decimal.Zero
	}
	return taxable
}
