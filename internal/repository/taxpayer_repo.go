package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taxengine/internal/model"
)

type TaxPayerRepository interface {
	Create(ctx context.Context, taxpayer *model.TaxPayer) error
	Update(ctx context.Context, taxpayer *model.TaxPayer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxPayer, error)
	FindByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error)
	// FindActiveByTaxID resolves a taxpayer for calculation: inactive
	// taxpayers are treated as not found.
	FindActiveByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error)
	List(ctx context.Context, entityType, search string, page, limit int) ([]model.TaxPayer, int64, error)
}

type taxPayerRepository struct {
	db *gorm.DB
}

func NewTaxPayerRepository(db *gorm.DB) TaxPayerRepository {
	return &taxPayerRepository{db: db}
}

func (r *taxPayerRepository) Create(ctx context.Context, taxpayer *model.TaxPayer) error {
	return GetDB(ctx, r.db).Create(taxpayer).Error
}

func (r *taxPayerRepository) Update(ctx context.Context, taxpayer *model.TaxPayer) error {
	return GetDB(ctx, r.db).Save(taxpayer).Error
}

func (r *taxPayerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxPayer, error) {
	var taxpayer model.TaxPayer
	if err := GetDB(ctx, r.db).First(&taxpayer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &taxpayer, nil
}

func (r *taxPayerRepository) FindByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error) {
	var taxpayer model.TaxPayer
	if err := GetDB(ctx, r.db).First(&taxpayer, "tax_id = ?", taxID).Error; err != nil {
		return nil, err
	}
	return &taxpayer, nil
}

func (r *taxPayerRepository) FindActiveByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error) {
	var taxpayer model.TaxPayer
	if err := GetDB(ctx, r.db).
		First(&taxpayer, "tax_id = ? AND is_active = true", taxID).Error; err != nil {
		return nil, err
	}
	return &taxpayer, nil
}

func (r *taxPayerRepository) List(ctx context.Context, entityType, search string, page, limit int) ([]model.TaxPayer, int64, error) {
	var taxpayers []model.TaxPayer
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TaxPayer{})

	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR tax_id ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&taxpayers).Error; err != nil {
		return nil, 0, err
	}

	return taxpayers, total, nil
}
