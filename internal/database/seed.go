package database

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taxengine/internal/model"
	"taxengine/internal/repository"
)

// SeedDefaultRules inserts the default rule catalog on first boot. It is a
// no-op when any rule already exists so operator edits survive restarts.
// The existence check and the insert run in one transaction so concurrent
// replicas cannot both seed.
func SeedDefaultRules(ctx context.Context, db *gorm.DB) error {
	return repository.NewTransactionManager(db).RunInTx(ctx, func(txCtx context.Context) error {
		tx := repository.GetDB(txCtx, db)

		var count int64
		if err := tx.Model(&model.TaxRule{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		rules := defaultRules()
		return tx.Create(&rules).Error
	})
}

func defaultRules() []model.TaxRule {
	effectiveFrom := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rules := []model.TaxRule{
		// Progressive income brackets, state single-filer schedule.
		incomeBracket("Income Bracket 1", nil, dec("1000"), "0.0025", 1, effectiveFrom),
		incomeBracket("Income Bracket 2", dec("1000.01"), dec("2500"), "0.0075", 2, effectiveFrom),
		incomeBracket("Income Bracket 3", dec("2500.01"), dec("3750"), "0.0175", 3, effectiveFrom),
		incomeBracket("Income Bracket 4", dec("3750.01"), dec("4900"), "0.0275", 4, effectiveFrom),
		incomeBracket("Income Bracket 5", dec("4900.01"), dec("7200"), "0.0375", 5, effectiveFrom),
		incomeBracket("Income Bracket 6", dec("7200.01"), nil, "0.0475", 6, effectiveFrom),

		// Flat sales rules: exemptions and penalties sort ahead of the
		// standard rate so they win when their conditions match.
		{
			TaxType:       model.TaxTypeSales,
			RuleName:      "Grocery Sales Tax Exemption",
			Rate:          decimal.Zero,
			FlatAmount:    decimal.Zero,
			EffectiveFrom: effectiveFrom,
			Priority:      10,
			IsActive:      true,
			Conditions: model.RuleConditions{
				{Kind: model.ConditionCategoryEquals, Category: "Grocery"},
			},
		},
		{
			TaxType:       model.TaxTypeSales,
			RuleName:      "Late Filing Penalty Rate",
			Rate:          decimal.RequireFromString("0.095"),
			FlatAmount:    decimal.Zero,
			EffectiveFrom: effectiveFrom,
			Priority:      20,
			IsActive:      true,
			Conditions: model.RuleConditions{
				{Kind: model.ConditionDaysLateThreshold, MinDays: 30},
			},
		},
		{
			TaxType:       model.TaxTypeSales,
			RuleName:      "Standard Sales Tax",
			Rate:          decimal.RequireFromString("0.045"),
			FlatAmount:    decimal.Zero,
			EffectiveFrom: effectiveFrom,
			Priority:      100,
			IsActive:      true,
		},

		{
			TaxType:       model.TaxTypeProperty,
			RuleName:      "Standard Property Tax",
			Rate:          decimal.RequireFromString("0.011"),
			FlatAmount:    decimal.Zero,
			EffectiveFrom: effectiveFrom,
			Priority:      100,
			IsActive:      true,
		},
		{
			TaxType:       model.TaxTypeCorporate,
			RuleName:      "Corporate Franchise Tax",
			Rate:          decimal.RequireFromString("0.04"),
			FlatAmount:    decimal.Zero,
			EffectiveFrom: effectiveFrom,
			Priority:      100,
			IsActive:      true,
		},
	}

	return rules
}

func incomeBracket(name string, min, max *decimal.Decimal, rate string, priority int, from time.Time) model.TaxRule {
	return model.TaxRule{
		TaxType:       model.TaxTypeIncome,
		RuleName:      name,
		MinAmount:     min,
		MaxAmount:     max,
		Rate:          decimal.RequireFromString(rate),
		FlatAmount:    decimal.Zero,
		EffectiveFrom: from,
		Priority:      priority,
		IsActive:      true,
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
