package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MaterialItem is the read model of the supplier material catalog. Catalog
// management lives in the supplier service; this table is only consulted for
// warranty period declarations at warranty creation time.
type MaterialItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Code       string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Category   string    `gorm:"size:100;index" json:"category,omitempty"`
	SupplierID *string   `gorm:"size:255;index" json:"supplier_id,omitempty"`

	// WarrantyPeriod holds the supplier's declaration exactly as received: a
	// bare number (months) or a free-text string like "12 months" / "1 year" /
	// "365 days". It is parsed once, at the warranty-creation boundary.
	WarrantyPeriod datatypes.JSON `gorm:"type:jsonb" json:"warranty_period,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for MaterialItem
func (MaterialItem) TableName() string {
	return "material_items"
}
