package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxengine/internal/model"
)

// TransactionListFilter narrows List results. Zero values mean "no filter".
type TransactionListFilter struct {
	Status   string
	TaxType  string
	FromDate *time.Time
	ToDate   *time.Time
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.TaxTransaction) error
	Update(ctx context.Context, txn *model.TaxTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxTransaction, error)
	FindByTransactionNo(ctx context.Context, transactionNo string) (*model.TaxTransaction, error)
	List(ctx context.Context, filter TransactionListFilter, page, limit int) ([]model.TaxTransaction, int64, error)
	ListByTaxPayer(ctx context.Context, taxPayerID uuid.UUID, page, limit int) ([]model.TaxTransaction, int64, error)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.TaxTransaction) error {
	return GetDB(ctx, r.db).Create(txn).Error
}

func (r *transactionRepository) Update(ctx context.Context, txn *model.TaxTransaction) error {
	return GetDB(ctx, r.db).Save(txn).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxTransaction, error) {
	var txn model.TaxTransaction
	if err := GetDB(ctx, r.db).Preload("TaxPayer").First(&txn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) FindByTransactionNo(ctx context.Context, transactionNo string) (*model.TaxTransaction, error) {
	var txn model.TaxTransaction
	if err := GetDB(ctx, r.db).Preload("TaxPayer").First(&txn, "transaction_no = ?", transactionNo).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionListFilter, page, limit int) ([]model.TaxTransaction, int64, error) {
	var txns []model.TaxTransaction
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TaxTransaction{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TaxType != "" {
		query = query.Where("tax_type = ?", filter.TaxType)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("TaxPayer").
		Order("transaction_date desc").
		Offset(offset).Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}

func (r *transactionRepository) ListByTaxPayer(ctx context.Context, taxPayerID uuid.UUID, page, limit int) ([]model.TaxTransaction, int64, error) {
	var txns []model.TaxTransaction
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TaxTransaction{}).Where("tax_payer_id = ?", taxPayerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("transaction_date desc").Offset(offset).Limit(limit).Find(&txns).Error; err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
