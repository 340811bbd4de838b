package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxengine/internal/model"
)

// RuleListFilter narrows List results. Zero values mean "no filter".
type RuleListFilter struct {
	TaxType       string
	IsActive      *bool
	EffectiveDate *time.Time
}

type TaxRuleRepository interface {
	Create(ctx context.Context, rule *model.TaxRule) error
	Update(ctx context.Context, rule *model.TaxRule) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRule, error)
	// FindByType returns every rule tagged with taxType, active or not.
	// Effective-window filtering is the engine's job, not the store's.
	FindByType(ctx context.Context, taxType string) ([]model.TaxRule, error)
	List(ctx context.Context, filter RuleListFilter, page, limit int) ([]model.TaxRule, int64, error)
}

type taxRuleRepository struct {
	db *gorm.DB
}

func NewTaxRuleRepository(db *gorm.DB) TaxRuleRepository {
	return &taxRuleRepository{db: db}
}

func (r *taxRuleRepository) Create(ctx context.Context, rule *model.TaxRule) error {
	return GetDB(ctx, r.db).Create(rule).Error
}

func (r *taxRuleRepository) Update(ctx context.Context, rule *model.TaxRule) error {
	return GetDB(ctx, r.db).Save(rule).Error
}

func (r *taxRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRule, error) {
	var rule model.TaxRule
	if err := GetDB(ctx, r.db).First(&rule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *taxRuleRepository) FindByType(ctx context.Context, taxType string) ([]model.TaxRule, error) {
	var rules []model.TaxRule
	if err := GetDB(ctx, r.db).
		Where("tax_type = ?", taxType).
		Order("priority asc").
		Order("min_amount asc nulls first").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *taxRuleRepository) List(ctx context.Context, filter RuleListFilter, page, limit int) ([]model.TaxRule, int64, error) {
	var rules []model.TaxRule
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TaxRule{})

	if filter.TaxType != "" {
		query = query.Where("tax_type = ?", filter.TaxType)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.EffectiveDate != nil {
		query = query.Where("effective_from <= ? AND (effective_to IS NULL OR effective_to >= ?)",
			*filter.EffectiveDate, *filter.EffectiveDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Order("tax_type asc").
		Order("priority asc").
		Order("min_amount asc nulls first").
		Offset(offset).Limit(limit).
		Find(&rules).Error; err != nil {
		return nil, 0, err
	}

	return rules, total, nil
}
