package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction statuses
const (
	TransactionPending   = "Pending"
	TransactionPaid      = "Paid"
	TransactionCancelled = "Cancelled"
)

// TaxTransaction is a persisted record of one tax calculation handed to the
// payments pipeline. TransactionNo is the human-facing identifier; its
// uniqueness is enforced by the unique index, not by the generator.
type TaxTransaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionNo   string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"transaction_no"` // TXN-YYYYMMDD-XXXXXXXX
	TaxPayerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"taxpayer_id"`
	TaxPayer        *TaxPayer       `gorm:"foreignKey:TaxPayerID" json:"taxpayer,omitempty"`
	TaxType         string          `gorm:"type:varchar(20);not null;index" json:"tax_type"`
	TaxableAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"taxable_amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"tax_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	TransactionDate time.Time       `gorm:"not null" json:"transaction_date"`
	TaxPeriod       string          `gorm:"type:varchar(20)" json:"tax_period"` // e.g. "2026", "2026-08", "2026-Q3"
	Status          string          `gorm:"type:varchar(20);not null;default:Pending;index" json:"status"`
	PaymentMethod   string          `gorm:"type:varchar(50)" json:"payment_method"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// IsPending reports whether the transaction is still awaiting payment.
func (t *TaxTransaction) IsPending() bool { return t.Status == TransactionPending }

// IsPaid reports whether the transaction has been settled.
func (t *TaxTransaction) IsPaid() bool { return t.Status == TransactionPaid }

// MarkAsPaid settles a pending transaction. Only Pending transactions can
// be paid.
func (t *TaxTransaction) MarkAsPaid(paymentMethod string, now time.Time) error {
	if !t.IsPending() {
		return fmt.Errorf("transaction %s is not in pending status", t.TransactionNo)
	}
	t.Status = TransactionPaid
	t.PaymentMethod = paymentMethod
	t.PaymentDate = &now
	return nil
}

// Cancel voids a pending transaction.
func (t *TaxTransaction) Cancel(now time.Time) error {
	if !t.IsPending() {
		return fmt.Errorf("transaction %s is not in pending status", t.TransactionNo)
	}
	t.Status = TransactionCancelled
	t.UpdatedAt = now
	return nil
}
