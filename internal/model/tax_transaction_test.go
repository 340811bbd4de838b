package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxTransaction_MarkAsPaid(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	txn := TaxTransaction{TransactionNo: "TXN-20260829-ABCDEF01", Status: TransactionPending}

	require.NoError(t, txn.MarkAsPaid("Credit Card", now))
	assert.Equal(t, TransactionPaid, txn.Status)
	assert.Equal(t, "Credit Card", txn.PaymentMethod)
	require.NotNil(t, txn.PaymentDate)
	assert.Equal(t, now, *txn.PaymentDate)

	err := txn.MarkAsPaid("Check", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in pending status")
}

func TestTaxTransaction_Cancel(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	txn := TaxTransaction{TransactionNo: "TXN-20260829-ABCDEF02", Status: TransactionPending}

	require.NoError(t, txn.Cancel(now))
	assert.Equal(t, TransactionCancelled, txn.Status)

	require.Error(t, txn.Cancel(now))
	require.Error(t, txn.MarkAsPaid("Check", now), "cancelled transactions cannot be paid")
}

func TestTaxPayer_Deactivate(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	p := TaxPayer{TaxID: "TP-001", IsActive: true}

	p.Deactivate(now)

	assert.False(t, p.IsActive)
	require.NotNil(t, p.DeactivatedAt)
	assert.Equal(t, now, *p.DeactivatedAt)
}
