package models

import (
	"time"

	"github.com/google/uuid"
)

// WarrantyStatus is the derived lifecycle state of a warranty.
type WarrantyStatus string

const (
	WarrantyStatusActive  WarrantyStatus = "active"
	WarrantyStatusExpired WarrantyStatus = "expired"
)

// ClaimGraceDays is how long after warranty end a claim may still be filed.
const ClaimGraceDays = 90

// Warranty is a time-bounded guarantee tied to one project and one material item.
// At most one warranty may ever exist per (project, item) pair, enforced by the
// composite unique index regardless of the warranty's derived status.
type Warranty struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_warranty_project_item" json:"project_id"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_warranty_project_item" json:"item_id"`
	ClientID  string    `gorm:"size:255;not null;index" json:"client_id"`

	// Period. End is computed once at creation from start + parsed duration and
	// never recomputed. Both are date-granular (midnight UTC).
	WarrantyStart  time.Time `gorm:"not null" json:"warranty_start"`
	WarrantyEnd    time.Time `gorm:"not null" json:"warranty_end"`
	DurationMonths int       `gorm:"not null" json:"duration_months"`

	// Status is a denormalized snapshot written at creation only. It is never
	// read back for decisions; callers must use StatusAt.
	Status WarrantyStatus `gorm:"size:20;not null;default:'active'" json:"-"`

	// Metadata
	CreatedBy string    `gorm:"size:255;not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Claims []WarrantyClaim `gorm:"foreignKey:WarrantyID" json:"claims,omitempty"`
}

// TableName specifies the table name for Warranty
func (Warranty) TableName() string {
	return "warranties"
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StatusAt derives the authoritative status from the warranty's date range.
// Active covers every calendar day in [start, end], both ends inclusive. The
// stored Status column must never override this.
func (w *Warranty) StatusAt(now time.Time) WarrantyStatus {
	d := DateOf(now)
	if d.Before(DateOf(w.WarrantyStart)) || d.After(DateOf(w.WarrantyEnd)) {
		return WarrantyStatusExpired
	}
	return WarrantyStatusActive
}

// ClaimDeadline is the last calendar day on which a claim may be filed.
func (w *Warranty) ClaimDeadline() time.Time {
	return DateOf(w.WarrantyEnd).AddDate(0, 0, ClaimGraceDays)
}

// ClaimableAt reports whether a claim may be filed at the given time: the
// warranty is active, or expired no more than ClaimGraceDays ago. A warranty
// whose start date is still in the future is not claimable.
func (w *Warranty) ClaimableAt(now time.Time) bool {
	d := DateOf(now)
	if d.Before(DateOf(w.WarrantyStart)) {
		return false
	}
	return !d.After(w.ClaimDeadline())
}

// WarrantyDTO is the API shape of a warranty with its derived status attached.
type WarrantyDTO struct {
	ID             uuid.UUID       `json:"id"`
	ProjectID      uuid.UUID       `json:"project_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	ClientID       string          `json:"client_id"`
	WarrantyStart  string          `json:"warranty_start"`
	WarrantyEnd    string          `json:"warranty_end"`
	DurationMonths int             `json:"duration_months"`
	Status         WarrantyStatus  `json:"status"`
	Claimable      bool            `json:"claimable"`
	ClaimDeadline  string          `json:"claim_deadline"`
	CreatedAt      time.Time       `json:"created_at"`
	Claims         []WarrantyClaim `json:"claims,omitempty"`
}

const dateLayout = "2006-01-02"

// ToDTO builds the API representation, deriving status at the given time.
func (w *Warranty) ToDTO(now time.Time) WarrantyDTO {
	return WarrantyDTO{
		ID:             w.ID,
		ProjectID:      w.ProjectID,
		ItemID:         w.ItemID,
		ClientID:       w.ClientID,
		WarrantyStart:  DateOf(w.WarrantyStart).Format(dateLayout),
		WarrantyEnd:    DateOf(w.WarrantyEnd).Format(dateLayout),
		DurationMonths: w.DurationMonths,
		Status:         w.StatusAt(now),
		Claimable:      w.ClaimableAt(now),
		ClaimDeadline:  w.ClaimDeadline().Format(dateLayout),
		CreatedAt:      w.CreatedAt,
		Claims:         w.Claims,
	}
}
