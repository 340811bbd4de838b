package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taxengine/internal/cache"
	"taxengine/internal/model"
	"taxengine/internal/repository"
)

// --- DTOs ---

type CreateTaxRuleRequest struct {
	TaxType       string                `json:"tax_type" binding:"required"`
	RuleName      string                `json:"rule_name" binding:"required"`
	MinAmount     string                `json:"min_amount"` // decimal string, empty = open
	MaxAmount     string                `json:"max_amount"` // decimal string, empty = open
	Rate          string                `json:"rate" binding:"required"` // fraction, e.g. "0.045"
	FlatAmount    string                `json:"flat_amount"`             // defaults to 0
	EffectiveFrom string                `json:"effective_from" binding:"required"` // YYYY-MM-DD
	EffectiveTo   string                `json:"effective_to"`                      // YYYY-MM-DD, empty = open-ended
	Priority      int                   `json:"priority"`                          // defaults to 100
	Conditions    []model.RuleCondition `json:"conditions"`
}

type UpdateTaxRuleRequest = CreateTaxRuleRequest

type RuleListQuery struct {
	TaxType       string
	IsActive      *bool
	EffectiveDate string // YYYY-MM-DD
	Page          int
	Limit         int
}

// --- Interface ---

type TaxRuleService interface {
	ListRules(ctx context.Context, q RuleListQuery) ([]model.TaxRule, int64, error)
	GetRule(ctx context.Context, id string) (*model.TaxRule, error)
	ActiveRules(ctx context.Context, taxType string, date time.Time) ([]model.TaxRule, error)
	CreateRule(ctx context.Context, req CreateTaxRuleRequest) (*model.TaxRule, error)
	UpdateRule(ctx context.Context, id string, req UpdateTaxRuleRequest) (*model.TaxRule, error)
	DeactivateRule(ctx context.Context, id string) error
}

type taxRuleService struct {
	ruleRepo  repository.TaxRuleRepository
	engine    RuleEngine
	ruleCache *cache.RuleCache
	log       zerolog.Logger
}

func NewTaxRuleService(ruleRepo repository.TaxRuleRepository, engine RuleEngine, ruleCache *cache.RuleCache, log zerolog.Logger) TaxRuleService {
	return &taxRuleService{ruleRepo: ruleRepo, engine: engine, ruleCache: ruleCache, log: log}
}

// --- Implementation ---

func (s *taxRuleService) ListRules(ctx context.Context, q RuleListQuery) ([]model.TaxRule, int64, error) {
	filter := repository.RuleListFilter{IsActive: q.IsActive}

	if q.TaxType != "" {
		canonical, ok := model.CanonicalTaxType(q.TaxType)
		if !ok {
			return nil, 0, fmt.Errorf("invalid tax type: %s", q.TaxType)
		}
		filter.TaxType = canonical
	}
	if q.EffectiveDate != "" {
		d, err := time.Parse("2006-01-02", q.EffectiveDate)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid effective date format (expected YYYY-MM-DD): %w", err)
		}
		filter.EffectiveDate = &d
	}

	return s.ruleRepo.List(ctx, filter, q.Page, q.Limit)
}

func (s *taxRuleService) GetRule(ctx context.Context, id string) (*model.TaxRule, error) {
	ruleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rule id: %w", err)
	}

	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tax rule not found")
		}
		return nil, fmt.Errorf("failed to fetch tax rule: %w", err)
	}
	return rule, nil
}

// ActiveRules resolves the rules in force for a tax type on a date through
// the engine, so responses reflect the same filter and ordering
// calculations use.
func (s *taxRuleService) ActiveRules(ctx context.Context, taxType string, date time.Time) ([]model.TaxRule, error) {
	canonical, ok := model.CanonicalTaxType(taxType)
	if !ok {
		return nil, fmt.Errorf("invalid tax type: %s", taxType)
	}
	return s.engine.GetApplicableRules(ctx, canonical, date)
}

func (s *taxRuleService) CreateRule(ctx context.Context, req CreateTaxRuleRequest) (*model.TaxRule, error) {
	rule, err := s.buildRule(req)
	if err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create tax rule: %w", err)
	}

	s.ruleCache.Flush()
	s.log.Info().Str("rule_name", rule.RuleName).Str("tax_type", rule.TaxType).Msg("created tax rule")

	return rule, nil
}

func (s *taxRuleService) UpdateRule(ctx context.Context, id string, req UpdateTaxRuleRequest) (*model.TaxRule, error) {
	existing, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildRule(req)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.IsActive = existing.IsActive
	updated.DeactivatedAt = existing.DeactivatedAt
	updated.CreatedAt = existing.CreatedAt

	if err := s.ruleRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update tax rule: %w", err)
	}

	s.ruleCache.Flush()
	s.log.Info().Str("rule_name", updated.RuleName).Msg("updated tax rule")

	return updated, nil
}

// DeactivateRule soft-deletes: the rule transitions to Inactive with its
// effective window closed at now. Rules are never hard-deleted.
func (s *taxRuleService) DeactivateRule(ctx context.Context, id string) error {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return err
	}

	rule.Deactivate(time.Now().UTC())
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return fmt.Errorf("failed to deactivate tax rule: %w", err)
	}

	s.ruleCache.Flush()
	s.log.Info().Str("rule_name", rule.RuleName).Msg("deactivated tax rule")

	return nil
}

// --- Helpers ---

// buildRule parses and validates the authoring request. Rule invariants
// (rate in [0,1], flat >= 0, min <= max, known condition kinds) are
// enforced here so the engine can assume well-formed rules at evaluation
// time.
func (s *taxRuleService) buildRule(req CreateTaxRuleRequest) (*model.TaxRule, error) {
	taxType, ok := model.CanonicalTaxType(req.TaxType)
	if !ok {
		return nil, fmt.Errorf("invalid tax type: %s", req.TaxType)
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate value: %w", err)
	}
	if rate.Sign() < 0 || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("rate must be between 0 and 1")
	}

	flatAmount := decimal.Zero
	if req.FlatAmount != "" {
		flatAmount, err = decimal.NewFromString(req.FlatAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid flat amount: %w", err)
		}
		if flatAmount.Sign() < 0 {
			return nil, fmt.Errorf("flat amount cannot be negative")
		}
	}

	minAmount, err := parseOptionalDecimal(req.MinAmount, "min_amount")
	if err != nil {
		return nil, err
	}
	maxAmount, err := parseOptionalDecimal(req.MaxAmount, "max_amount")
	if err != nil {
		return nil, err
	}
	if minAmount != nil && maxAmount != nil && minAmount.GreaterThan(*maxAmount) {
		return nil, fmt.Errorf("min_amount cannot be greater than max_amount")
	}

	effectiveFrom, err := time.Parse("2006-01-02", req.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("invalid effective_from date format (expected YYYY-MM-DD): %w", err)
	}

	var effectiveTo *time.Time
	if req.EffectiveTo != "" {
		t, err := time.Parse("2006-01-02", req.EffectiveTo)
		if err != nil {
			return nil, fmt.Errorf("invalid effective_to date format (expected YYYY-MM-DD): %w", err)
		}
		effectiveTo = &t
	}

	for _, c := range req.Conditions {
		if !model.KnownConditionKind(c.Kind) {
			return nil, fmt.Errorf("unknown condition kind: %s", c.Kind)
		}
	}

	priority := req.Priority
	if priority == 0 {
		priority = 100
	}

	return &model.TaxRule{
		TaxType:       taxType,
		RuleName:      req.RuleName,
		MinAmount:     minAmount,
		MaxAmount:     maxAmount,
		Rate:          rate,
		FlatAmount:    flatAmount,
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		Priority:      priority,
		IsActive:      true,
		Conditions:    req.Conditions,
	}, nil
}

func parseOptionalDecimal(raw, field string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &d, nil
}
