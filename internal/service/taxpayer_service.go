package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"taxengine/internal/model"
	"taxengine/internal/repository"
)

// --- DTOs ---

type CreateTaxPayerRequest struct {
	TaxID      string `json:"tax_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	EntityType string `json:"entity_type" binding:"required,oneof=Individual Corporate Partnership"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

type UpdateTaxPayerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zip_code"`
}

// --- Interface ---

type TaxPayerService interface {
	ListTaxPayers(ctx context.Context, entityType, search string, page, limit int) ([]model.TaxPayer, int64, error)
	GetTaxPayer(ctx context.Context, id string) (*model.TaxPayer, error)
	GetByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error)
	CreateTaxPayer(ctx context.Context, req CreateTaxPayerRequest) (*model.TaxPayer, error)
	UpdateTaxPayer(ctx context.Context, id string, req UpdateTaxPayerRequest) (*model.TaxPayer, error)
	DeactivateTaxPayer(ctx context.Context, id string) error
}

type taxPayerService struct {
	taxPayerRepo repository.TaxPayerRepository
	log          zerolog.Logger
}

func NewTaxPayerService(taxPayerRepo repository.TaxPayerRepository, log zerolog.Logger) TaxPayerService {
	return &taxPayerService{taxPayerRepo: taxPayerRepo, log: log}
}

// --- Implementation ---

func (s *taxPayerService) ListTaxPayers(ctx context.Context, entityType, search string, page, limit int) ([]model.TaxPayer, int64, error) {
	return s.taxPayerRepo.List(ctx, entityType, search, page, limit)
}

func (s *taxPayerService) GetTaxPayer(ctx context.Context, id string) (*model.TaxPayer, error) {
	taxPayerID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid taxpayer id: %w", err)
	}

	taxpayer, err := s.taxPayerRepo.FindByID(ctx, taxPayerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("taxpayer not found")
		}
		return nil, fmt.Errorf("failed to fetch taxpayer: %w", err)
	}
	return taxpayer, nil
}

func (s *taxPayerService) GetByTaxID(ctx context.Context, taxID string) (*model.TaxPayer, error) {
	taxpayer, err := s.taxPayerRepo.FindByTaxID(ctx, taxID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("taxpayer not found: %s", taxID)
		}
		return nil, fmt.Errorf("failed to fetch taxpayer: %w", err)
	}
	return taxpayer, nil
}

func (s *taxPayerService) CreateTaxPayer(ctx context.Context, req CreateTaxPayerRequest) (*model.TaxPayer, error) {
	if _, err := s.taxPayerRepo.FindByTaxID(ctx, req.TaxID); err == nil {
		return nil, fmt.Errorf("a taxpayer with tax id %s already exists", req.TaxID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check tax id: %w", err)
	}

	taxpayer := &model.TaxPayer{
		TaxID:            req.TaxID,
		Name:             req.Name,
		EntityType:       req.EntityType,
		Email:            req.Email,
		Phone:            req.Phone,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		ZipCode:          req.ZipCode,
		RegistrationDate: time.Now().UTC(),
		IsActive:         true,
	}

	if err := s.taxPayerRepo.Create(ctx, taxpayer); err != nil {
		return nil, fmt.Errorf("failed to create taxpayer: %w", err)
	}

	s.log.Info().Str("tax_id", taxpayer.TaxID).Str("name", taxpayer.Name).Msg("registered taxpayer")
	return taxpayer, nil
}

func (s *taxPayerService) UpdateTaxPayer(ctx context.Context, id string, req UpdateTaxPayerRequest) (*model.TaxPayer, error) {
	taxpayer, err := s.GetTaxPayer(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		taxpayer.Name = *req.Name
	}
	if req.Email != nil {
		taxpayer.Email = *req.Email
	}
	if req.Phone != nil {
		taxpayer.Phone = *req.Phone
	}
	if req.Address != nil {
		taxpayer.Address = *req.Address
	}
	if req.City != nil {
		taxpayer.City = *req.City
	}
	if req.State != nil {
		taxpayer.State = *req.State
	}
	if req.ZipCode != nil {
		taxpayer.ZipCode = *req.ZipCode
	}

	if err := s.taxPayerRepo.Update(ctx, taxpayer); err != nil {
		return nil, fmt.Errorf("failed to update taxpayer: %w", err)
	}

	return taxpayer, nil
}

// DeactivateTaxPayer soft-deletes: the taxpayer transitions to Inactive and
// is rejected by subsequent calculation requests.
func (s *taxPayerService) DeactivateTaxPayer(ctx context.Context, id string) error {
	taxpayer, err := s.GetTaxPayer(ctx, id)
	if err != nil {
		return err
	}

	taxpayer.Deactivate(time.Now().UTC())
	if err := s.taxPayerRepo.Update(ctx, taxpayer); err != nil {
		return fmt.Errorf("failed to deactivate taxpayer: %w", err)
	}

	s.log.Info().Str("tax_id", taxpayer.TaxID).Msg("deactivated taxpayer")
	return nil
}
