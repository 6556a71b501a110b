package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"portex.io/warranty/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "02032026_create_warranty_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.MaterialItem{}, &models.Warranty{},
					&models.WarrantyClaim{}, &models.ClaimTransition{})
			},
		},
		{
			ID: "02032026_create_notification_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{})
			},
		},
		{
			ID: "09032026_claim_warranty_fk_index",
			Migrate: func(tx *gorm.DB) error {
				// Claim listing and the register export both walk claims by warranty.
				return tx.Exec("CREATE INDEX IF NOT EXISTS idx_claims_warranty_id ON warranty_claims (warranty_id)").Error
			},
		},
	})

	return m.Migrate()
}
