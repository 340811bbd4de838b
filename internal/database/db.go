package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"taxengine/internal/model"
)

// NewConnection initializes a new connection pool using GORM and migrates
// the core models.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.TaxPayer{},
		&model.TaxRule{},
		&model.TaxTransaction{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
