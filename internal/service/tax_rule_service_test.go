package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taxengine/internal/cache"
	"taxengine/internal/model"
	"taxengine/internal/repository"
)

type stubRuleRepo struct {
	byID  map[uuid.UUID]*model.TaxRule
	rules []model.TaxRule
}

func newStubRuleRepo(rules ...model.TaxRule) *stubRuleRepo {
	r := &stubRuleRepo{byID: map[uuid.UUID]*model.TaxRule{}}
	for i := range rules {
		if rules[i].ID == uuid.Nil {
			rules[i].ID = uuid.New()
		}
		r.rules = append(r.rules, rules[i])
		r.byID[rules[i].ID] = &r.rules[i]
	}
	return r
}

func (s *stubRuleRepo) Create(_ context.Context, rule *model.TaxRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	s.rules = append(s.rules, *rule)
	s.byID[rule.ID] = rule
	return nil
}

func (s *stubRuleRepo) Update(_ context.Context, rule *model.TaxRule) error {
	s.byID[rule.ID] = rule
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = *rule
		}
	}
	return nil
}

func (s *stubRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TaxRule, error) {
	rule, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rule
	return &cp, nil
}

func (s *stubRuleRepo) FindByType(_ context.Context, taxType string) ([]model.TaxRule, error) {
	var out []model.TaxRule
	for _, r := range s.rules {
		if r.TaxType == taxType {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubRuleRepo) List(_ context.Context, _ repository.RuleListFilter, _, _ int) ([]model.TaxRule, int64, error) {
	return s.rules, int64(len(s.rules)), nil
}

type ruleSvcFixture struct {
	repo      *stubRuleRepo
	ruleCache *cache.RuleCache
	svc       TaxRuleService
}

func newRuleSvcFixture(rules ...model.TaxRule) *ruleSvcFixture {
	f := &ruleSvcFixture{
		repo:      newStubRuleRepo(rules...),
		ruleCache: cache.NewRuleCache(time.Minute),
	}
	engine := NewRuleEngine(f.repo, f.ruleCache, zerolog.Nop())
	f.svc = NewTaxRuleService(f.repo, engine, f.ruleCache, zerolog.Nop())
	return f
}

func validCreateRequest() CreateTaxRuleRequest {
	return CreateTaxRuleRequest{
		TaxType:       "sales",
		RuleName:      "Standard Sales Tax",
		Rate:          "0.045",
		EffectiveFrom: "2026-01-01",
	}
}

func TestCreateRule(t *testing.T) {
	f := newRuleSvcFixture()

	rule, err := f.svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, model.TaxTypeSales, rule.TaxType, "tax type is stored canonically")
	assert.True(t, rule.Rate.Equal(d("0.045")))
	assert.True(t, rule.FlatAmount.IsZero())
	assert.Equal(t, 100, rule.Priority, "priority defaults when omitted")
	assert.True(t, rule.IsActive)
	assert.Nil(t, rule.MinAmount)
	assert.Nil(t, rule.EffectiveTo)
}

func TestCreateRule_Validation(t *testing.T) {
	f := newRuleSvcFixture()

	cases := []struct {
		name    string
		mutate  func(*CreateTaxRuleRequest)
		wantErr string
	}{
		{"unknown tax type", func(r *CreateTaxRuleRequest) { r.TaxType = "Gambling" }, "invalid tax type"},
		{"rate above one", func(r *CreateTaxRuleRequest) { r.Rate = "1.5" }, "rate must be between 0 and 1"},
		{"negative rate", func(r *CreateTaxRuleRequest) { r.Rate = "-0.1" }, "rate must be between 0 and 1"},
		{"negative flat amount", func(r *CreateTaxRuleRequest) { r.FlatAmount = "-5" }, "flat amount cannot be negative"},
		{"min above max", func(r *CreateTaxRuleRequest) { r.MinAmount = "500"; r.MaxAmount = "100" }, "min_amount cannot be greater than max_amount"},
		{"bad date", func(r *CreateTaxRuleRequest) { r.EffectiveFrom = "01/01/2026" }, "invalid effective_from"},
		{"unknown condition kind", func(r *CreateTaxRuleRequest) {
			r.Conditions = []model.RuleCondition{{Kind: "moon_phase"}}
		}, "unknown condition kind"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.mutate(&req)
			_, err := f.svc.CreateRule(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	assert.Empty(t, f.repo.rules, "no invalid rule may reach the store")
}

func TestCreateRule_FlushesCache(t *testing.T) {
	f := newRuleSvcFixture()

	date := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	// Warm the cache with an empty rule list.
	rules, err := f.svc.ActiveRules(context.Background(), "Sales", date)
	require.NoError(t, err)
	assert.Empty(t, rules)

	_, err = f.svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// The new rule is visible immediately, not after the TTL.
	rules, err = f.svc.ActiveRules(context.Background(), "Sales", date)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Standard Sales Tax", rules[0].RuleName)
}

func TestUpdateRule_PreservesIdentityAndState(t *testing.T) {
	f := newRuleSvcFixture()

	created, err := f.svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Rate = "0.05"
	updated, err := f.svc.UpdateRule(context.Background(), created.ID.String(), req)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.True(t, updated.Rate.Equal(d("0.05")))
	assert.True(t, updated.IsActive)
}

func TestDeactivateRule(t *testing.T) {
	f := newRuleSvcFixture()

	created, err := f.svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeactivateRule(context.Background(), created.ID.String()))

	stored, err := f.svc.GetRule(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotNil(t, stored.EffectiveTo)
	assert.NotNil(t, stored.DeactivatedAt)

	// Deactivated rules drop out of the active set right away.
	rules, err := f.svc.ActiveRules(context.Background(), "Sales", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestGetRule_Errors(t *testing.T) {
	f := newRuleSvcFixture()

	_, err := f.svc.GetRule(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tax rule id")

	_, err = f.svc.GetRule(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax rule not found")
}

func TestActiveRules_InvalidType(t *testing.T) {
	f := newRuleSvcFixture()

	_, err := f.svc.ActiveRules(context.Background(), "Gambling", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tax type")
}
