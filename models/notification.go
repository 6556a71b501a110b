package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType defines the type of notification
type NotificationType string

const (
	NotificationTypeWarrantyCreated NotificationType = "warranty_created"
	NotificationTypeClaimFiled      NotificationType = "claim_filed"
	NotificationTypeClaimApproved   NotificationType = "claim_approved"
	NotificationTypeClaimRejected   NotificationType = "claim_rejected"
	NotificationTypeClaimReplaced   NotificationType = "claim_replaced"
)

// NotificationStatus defines the status of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusRead    NotificationStatus = "read"
)

// Notification represents an in-app notification instance for a user. Creation
// is best-effort: a failed insert is logged by the notification service and
// never fails the warranty or claim mutation that triggered it.
type Notification struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID string    `gorm:"size:255;not null;index" json:"user_id"`

	// Content
	Type  NotificationType `gorm:"size:50;not null;index" json:"type"`
	Title string           `gorm:"size:500;not null" json:"title"`
	Body  string           `gorm:"type:text;not null" json:"body"`

	// Context (what triggered this notification)
	WarrantyID *uuid.UUID `gorm:"type:uuid;index" json:"warranty_id,omitempty"`
	ClaimID    *uuid.UUID `gorm:"type:uuid;index" json:"claim_id,omitempty"`
	Metadata   JSONMap    `gorm:"type:jsonb" json:"metadata,omitempty"`

	// Delivery status
	Status NotificationStatus `gorm:"size:20;default:'pending';index" json:"status"`
	ReadAt *time.Time         `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}

// JSONMap is a generic jsonb payload
type JSONMap map[string]interface{}

// Scan implements the sql.Scanner interface
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		*m = make(JSONMap)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(make(map[string]interface{}))
	}
	return json.Marshal(m)
}

// GormDataType defines the data type for GORM
func (JSONMap) GormDataType() string {
	return "jsonb"
}
