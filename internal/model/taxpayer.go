package model

import (
	"time"

	"github.com/google/uuid"
)

// Taxpayer entity types
const (
	EntityIndividual  = "Individual"
	EntityCorporate   = "Corporate"
	EntityPartnership = "Partnership"
)

// TaxPayer is a registered taxpayer. TaxID is the public identifier used in
// calculation requests; ID is the internal key.
type TaxPayer struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TaxID            string     `gorm:"type:varchar(50);not null;uniqueIndex" json:"tax_id"`
	Name             string     `gorm:"type:varchar(200);not null" json:"name"`
	EntityType       string     `gorm:"type:varchar(50);not null" json:"entity_type"` // Individual, Corporate, Partnership
	Email            string     `gorm:"type:varchar(100)" json:"email"`
	Phone            string     `gorm:"type:varchar(20)" json:"phone"`
	Address          string     `gorm:"type:varchar(500)" json:"address"`
	City             string     `gorm:"type:varchar(100)" json:"city"`
	State            string     `gorm:"type:varchar(2)" json:"state"`
	ZipCode          string     `gorm:"type:varchar(10)" json:"zip_code"`
	RegistrationDate time.Time  `json:"registration_date"`
	IsActive         bool       `gorm:"not null;default:true" json:"is_active"`
	DeactivatedAt    *time.Time `json:"deactivated_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Deactivate transitions the taxpayer from Active to Inactive with a
// transition timestamp. Inactive taxpayers are rejected by the calculation
// orchestrator.
func (p *TaxPayer) Deactivate(now time.Time) {
	p.IsActive = false
	p.DeactivatedAt = &now
}
