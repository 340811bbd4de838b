package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taxengine/internal/model"
)

type stubTaxPayerRepo struct {
	byID map[uuid.UUID]*model.TaxPayer
}

func newStubTaxPayerRepo() *stubTaxPayerRepo {
	return &stubTaxPayerRepo{byID: map[uuid.UUID]*model.TaxPayer{}}
}

func (s *stubTaxPayerRepo) Create(_ context.Context, p *model.TaxPayer) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.byID[p.ID] = p
	return nil
}

func (s *stubTaxPayerRepo) Update(_ context.Context, p *model.TaxPayer) error {
	s.byID[p.ID] = p
	return nil
}

func (s *stubTaxPayerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.TaxPayer, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubTaxPayerRepo) FindByTaxID(_ context.Context, taxID string) (*model.TaxPayer, error) {
	for _, p := range s.byID {
		if p.TaxID == taxID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTaxPayerRepo) FindActiveByTaxID(_ context.Context, taxID string) (*model.TaxPayer, error) {
	for _, p := range s.byID {
		if p.TaxID == taxID && p.IsActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTaxPayerRepo) List(_ context.Context, _, _ string, _, _ int) ([]model.TaxPayer, int64, error) {
	var out []model.TaxPayer
	for _, p := range s.byID {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func registrationRequest() CreateTaxPayerRequest {
	return CreateTaxPayerRequest{
		TaxID:      "TP-001",
		Name:       "Acme LLC",
		EntityType: "Corporate",
		Email:      "billing@acme.example",
		City:       "Tulsa",
		State:      "OK",
	}
}

func TestCreateTaxPayer(t *testing.T) {
	repo := newStubTaxPayerRepo()
	svc := NewTaxPayerService(repo, zerolog.Nop())

	p, err := svc.CreateTaxPayer(context.Background(), registrationRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.True(t, p.IsActive)
	assert.False(t, p.RegistrationDate.IsZero())
}

func TestCreateTaxPayer_DuplicateTaxID(t *testing.T) {
	repo := newStubTaxPayerRepo()
	svc := NewTaxPayerService(repo, zerolog.Nop())

	_, err := svc.CreateTaxPayer(context.Background(), registrationRequest())
	require.NoError(t, err)

	_, err = svc.CreateTaxPayer(context.Background(), registrationRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdateTaxPayer_PartialUpdate(t *testing.T) {
	repo := newStubTaxPayerRepo()
	svc := NewTaxPayerService(repo, zerolog.Nop())

	created, err := svc.CreateTaxPayer(context.Background(), registrationRequest())
	require.NoError(t, err)

	newName := "Acme Holdings LLC"
	updated, err := svc.UpdateTaxPayer(context.Background(), created.ID.String(), UpdateTaxPayerRequest{Name: &newName})
	require.NoError(t, err)

	assert.Equal(t, newName, updated.Name)
	// Fields not present in the request are left alone.
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.City, updated.City)
}

func TestDeactivateTaxPayer(t *testing.T) {
	repo := newStubTaxPayerRepo()
	svc := NewTaxPayerService(repo, zerolog.Nop())

	created, err := svc.CreateTaxPayer(context.Background(), registrationRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateTaxPayer(context.Background(), created.ID.String()))

	stored, err := svc.GetTaxPayer(context.Background(), created.ID.String())
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.NotNil(t, stored.DeactivatedAt)

	// Active lookups no longer resolve the taxpayer.
	_, err = repo.FindActiveByTaxID(context.Background(), "TP-001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetTaxPayer_Errors(t *testing.T) {
	svc := NewTaxPayerService(newStubTaxPayerRepo(), zerolog.Nop())

	_, err := svc.GetTaxPayer(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid taxpayer id")

	_, err = svc.GetTaxPayer(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taxpayer not found")
}
