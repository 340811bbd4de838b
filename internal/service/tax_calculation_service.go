package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"taxengine/internal/model"
	"taxengine/internal/repository"
)

// --- DTOs ---

type CalculationRequest struct {
	TaxPayerID      string `json:"taxpayer_id" binding:"required"`
	TaxType         string `json:"tax_type" binding:"required"`
	TaxableAmount   string `json:"taxable_amount" binding:"required"` // decimal string, e.g. "1500.00"
	CalculationDate string `json:"calculation_date"`                  // YYYY-MM-DD, defaults to now
	TaxPeriod       string `json:"tax_period"`                        // e.g. "2026-Q3", derived when empty
	ItemCategory    string `json:"item_category"`                     // condition context, optional
	DaysLate        int    `json:"days_late"`                         // condition context, optional
}

// CalculationResult is the structured outcome of a calculation. Failures
// are reported here with Success=false, never as panics; an empty
// AppliedRules with Success=true is the no-tax outcome.
type CalculationResult struct {
	Success       bool                    `json:"success"`
	Message       string                  `json:"message"`
	TaxableAmount decimal.Decimal         `json:"taxable_amount"`
	TaxAmount     decimal.Decimal         `json:"tax_amount"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	AppliedRules  []model.RuleApplication `json:"applied_rules"`
}

type PaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"` // Credit Card, Bank Transfer, Check
}

// --- Interface ---

// TaxPayerSource resolves taxpayers. It is the only directory capability
// the orchestrator needs; repository.TaxPayerRepository satisfies it.
type TaxPayerSource interface {
	FindActiveByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error)
	FindByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error)
}

// TransactionEvents receives transaction lifecycle notifications. The
// websocket hub satisfies it; a nil value disables broadcasting.
type TransactionEvents interface {
	Publish(event string, payload interface{})
}

type TaxCalculationService interface {
	CalculateTax(ctx context.Context, req CalculationRequest) CalculationResult
	CreateTransaction(ctx context.Context, req CalculationRequest) (*model.TaxTransaction, error)
	ListTransactions(ctx context.Context, filter repository.TransactionListFilter, page, limit int) ([]model.TaxTransaction, int64, error)
	GetTransaction(ctx context.Context, id string) (*model.TaxTransaction, error)
	ListByTaxPayer(ctx context.Context, taxID string, page, limit int) ([]model.TaxTransaction, int64, error)
	PayTransaction(ctx context.Context, id string, req PaymentRequest) (*model.TaxTransaction, error)
	CancelTransaction(ctx context.Context, id string) (*model.TaxTransaction, error)
}

type taxCalculationService struct {
	engine          RuleEngine
	taxPayers       TaxPayerSource
	transactionRepo repository.TransactionRepository
	events          TransactionEvents
	log             zerolog.Logger
	now             func() time.Time
}

func NewTaxCalculationService(
	engine RuleEngine,
	taxPayers TaxPayerSource,
	transactionRepo repository.TransactionRepository,
	events TransactionEvents,
	log zerolog.Logger,
) TaxCalculationService {
	return &taxCalculationService{
		engine:          engine,
		taxPayers:       taxPayers,
		transactionRepo: transactionRepo,
		events:          events,
		log:             log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// --- Implementation ---

// CalculateTax validates the request, resolves the taxpayer, applies the
// rules in force on the calculation date and aggregates the result.
// Validation and not-found conditions come back as Success=false results;
// unexpected resolution failures are logged and converted to a generic
// failure, never propagated to the caller.
func (s *taxCalculationService) CalculateTax(ctx context.Context, req CalculationRequest) CalculationResult {
	taxType, ok := model.CanonicalTaxType(req.TaxType)
	if !ok {
		return failedResult(fmt.Sprintf("Invalid tax type: %s", req.TaxType))
	}

	amount, err := decimal.NewFromString(req.TaxableAmount)
	if err != nil || amount.Sign() < 0 {
		return failedResult(fmt.Sprintf("Invalid taxable amount: %s", req.TaxableAmount))
	}

	if _, err := s.taxPayers.FindActiveByTaxID(ctx, req.TaxPayerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failedResult(fmt.Sprintf("Taxpayer not found: %s", req.TaxPayerID))
		}
		s.log.Error().Err(err).Str("taxpayer_id", req.TaxPayerID).Msg("taxpayer lookup failed")
		return failedResult("An error occurred while calculating tax")
	}

	calculationDate, err := s.resolveCalculationDate(req.CalculationDate)
	if err != nil {
		return failedResult(fmt.Sprintf("Invalid calculation date: %s", req.CalculationDate))
	}

	evalCtx := model.EvalContext{ItemCategory: req.ItemCategory, DaysLate: req.DaysLate}
	applications, err := s.engine.ApplyRules(ctx, taxType, amount, calculationDate, evalCtx)
	if err != nil {
		s.log.Error().Err(err).
			Str("taxpayer_id", req.TaxPayerID).
			Str("tax_type", taxType).
			Msg("rule application failed")
		return failedResult("An error occurred while calculating tax")
	}

	taxAmount := decimal.Zero
	for _, a := range applications {
		taxAmount = taxAmount.Add(a.CalculatedAmount)
	}
	totalAmount := amount.Add(taxAmount)

	s.log.Info().
		Str("taxpayer_id", req.TaxPayerID).
		Str("tax_type", taxType).
		Str("taxable_amount", amount.String()).
		Str("tax_amount", taxAmount.String()).
		Str("total_amount", totalAmount.String()).
		Msg("calculated tax")

	return CalculationResult{
		Success:       true,
		Message:       "Tax calculated successfully",
		TaxableAmount: amount,
		TaxAmount:     taxAmount,
		TotalAmount:   totalAmount,
		AppliedRules:  applications,
	}
}

// CreateTransaction calculates the tax and persists a Pending transaction
// with a generated transaction number. A failed calculation surfaces as an
// error carrying the calculation message; a persistence failure surfaces as
// a distinct wrapped error.
func (s *taxCalculationService) CreateTransaction(ctx context.Context, req CalculationRequest) (*model.TaxTransaction, error) {
	result := s.CalculateTax(ctx, req)
	if !result.Success {
		return nil, fmt.Errorf("calculation failed: %s", result.Message)
	}

	taxpayer, err := s.taxPayers.FindActiveByTaxID(ctx, req.TaxPayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve taxpayer: %w", err)
	}

	now := s.now()
	taxPeriod := req.TaxPeriod
	if taxPeriod == "" {
		taxPeriod = taxPeriodFor(req.TaxType, now)
	}

	ruleNames := lo.Map(result.AppliedRules, func(a model.RuleApplication, _ int) string {
		return a.RuleName
	})

	txn := &model.TaxTransaction{
		TransactionNo:   s.generateTransactionNo(),
		TaxPayerID:      taxpayer.ID,
		TaxType:         result.appliedTaxType(req.TaxType),
		TaxableAmount:   result.TaxableAmount,
		TaxAmount:       result.TaxAmount,
		TotalAmount:     result.TotalAmount,
		TransactionDate: now,
		TaxPeriod:       taxPeriod,
		Status:          model.TransactionPending,
		Notes:           "Applied rules: " + strings.Join(ruleNames, ", "),
	}

	if err := s.transactionRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	s.log.Info().
		Str("transaction_no", txn.TransactionNo).
		Str("taxpayer_id", req.TaxPayerID).
		Str("total_amount", txn.TotalAmount.String()).
		Msg("created transaction")

	s.publish("transaction.created", txn)

	return txn, nil
}

func (s *taxCalculationService) ListTransactions(ctx context.Context, filter repository.TransactionListFilter, page, limit int) ([]model.TaxTransaction, int64, error) {
	return s.transactionRepo.List(ctx, filter, page, limit)
}

func (s *taxCalculationService) GetTransaction(ctx context.Context, id string) (*model.TaxTransaction, error) {
	txnID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id: %w", err)
	}

	txn, err := s.transactionRepo.FindByID(ctx, txnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("transaction not found")
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}
	return txn, nil
}

func (s *taxCalculationService) ListByTaxPayer(ctx context.Context, taxID string, page, limit int) ([]model.TaxTransaction, int64, error) {
	taxpayer, err := s.taxPayers.FindByTaxID(ctx, taxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("taxpayer not found: %s", taxID)
		}
		return nil, 0, fmt.Errorf("failed to fetch taxpayer: %w", err)
	}
	return s.transactionRepo.ListByTaxPayer(ctx, taxpayer.ID, page, limit)
}

func (s *taxCalculationService) PayTransaction(ctx context.Context, id string, req PaymentRequest) (*model.TaxTransaction, error) {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := txn.MarkAsPaid(req.PaymentMethod, s.now()); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.publish("transaction.paid", txn)
	return txn, nil
}

func (s *taxCalculationService) CancelTransaction(ctx context.Context, id string) (*model.TaxTransaction, error) {
	txn, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := txn.Cancel(s.now()); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.Update(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	s.publish("transaction.cancelled", txn)
	return txn, nil
}

// --- Helpers ---

func failedResult(message string) CalculationResult {
	return CalculationResult{
		Success:       false,
		Message:       message,
		TaxableAmount: decimal.Zero,
		TaxAmount:     decimal.Zero,
		TotalAmount:   decimal.Zero,
		AppliedRules:  []model.RuleApplication{},
	}
}

// appliedTaxType echoes the canonical tax type for persistence so stored
// transactions use one spelling regardless of request casing.
func (r CalculationResult) appliedTaxType(requested string) string {
	if canonical, ok := model.CanonicalTaxType(requested); ok {
		return canonical
	}
	return requested
}

func (s *taxCalculationService) resolveCalculationDate(raw string) (time.Time, error) {
	if raw == "" {
		return s.now(), nil
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}
	return time.Parse("2006-01-02", raw)
}

// generateTransactionNo builds "TXN-" + date stamp + 8 random hex chars.
// Collisions are practically impossible but not guaranteed absent; the
// unique index on transaction_no is the actual guarantee.
func (s *taxCalculationService) generateTransactionNo() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("TXN-%s-%s", s.now().Format("20060102"), suffix)
}

// taxPeriodFor derives the filing period label for a tax type: annual for
// income and property, monthly for sales, quarterly for corporate.
func taxPeriodFor(taxType string, now time.Time) string {
	canonical, _ := model.CanonicalTaxType(taxType)
	switch canonical {
	case model.TaxTypeIncome, model.TaxTypeProperty:
		return now.Format("2006")
	case model.TaxTypeSales:
		return now.Format("2006-01")
	case model.TaxTypeCorporate:
		return fmt.Sprintf("%d-Q%d", now.Year(), (int(now.Month())-1)/3+1)
	default:
		return now.Format("2006-01")
	}
}

func (s *taxCalculationService) publish(event string, txn *model.TaxTransaction) {
	if s.events != nil {
		s.events.Publish(event, txn)
	}
}
