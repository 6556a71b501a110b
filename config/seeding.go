package config

import (
	"log"

	"gorm.io/datatypes"
	"portex.io/warranty/models"
)

// SeedMaterialCatalog loads a starter catalog so warranty creation has period
// declarations to parse. Supplier declarations arrive in whatever shape the
// supplier portal sent them, so the seed data keeps that variety.
func SeedMaterialCatalog() {
	var count int64
	if err := DB.Model(&models.MaterialItem{}).Count(&count).Error; err != nil {
		log.Printf("❌ Failed to check material catalog: %v", err)
		return
	}
	if count > 0 {
		log.Println("Material catalog already seeded, skipping...")
		return
	}

	items := []models.MaterialItem{
		{Code: "PIPE-HDPE-110", Name: "HDPE Pipe 110mm", Category: "Piping", WarrantyPeriod: datatypes.JSON(`"10 years"`)},
		{Code: "VALVE-GM-80", Name: "Gun Metal Sluice Valve 80mm", Category: "Valves", WarrantyPeriod: datatypes.JSON(`"18 months"`)},
		{Code: "PUMP-SUB-5HP", Name: "Submersible Pump 5HP", Category: "Pumps", WarrantyPeriod: datatypes.JSON(`24`)},
		{Code: "METER-DN25", Name: "Water Meter DN25", Category: "Metering", WarrantyPeriod: datatypes.JSON(`"365 days"`)},
		{Code: "TANK-PVC-1000", Name: "PVC Storage Tank 1000L", Category: "Storage", WarrantyPeriod: datatypes.JSON(`"1 year"`)},
		// No declaration on record; warranties fall back to the default period.
		{Code: "FITTING-ELBOW-90", Name: "Elbow Fitting 90deg", Category: "Fittings"},
	}

	for i := range items {
		if err := DB.Create(&items[i]).Error; err != nil {
			log.Printf("❌ Failed to seed material %s: %v", items[i].Code, err)
			return
		}
	}
	log.Printf("✅ Seeded %d catalog materials", len(items))
}
