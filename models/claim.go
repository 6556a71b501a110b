package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ClaimStatus defines the workflow state of a warranty claim
type ClaimStatus string

const (
	ClaimStatusSubmitted   ClaimStatus = "submitted"
	ClaimStatusUnderReview ClaimStatus = "under_review"
	ClaimStatusApproved    ClaimStatus = "approved"
	ClaimStatusRejected    ClaimStatus = "rejected"
	ClaimStatusReplaced    ClaimStatus = "replaced"
)

// Terminal reports whether no further transition is permitted from the state.
// Approved is terminal except for the single allowed move to replaced.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimStatusRejected || s == ClaimStatusReplaced
}

// Valid reports whether s is one of the defined workflow states.
func (s ClaimStatus) Valid() bool {
	switch s {
	case ClaimStatusSubmitted, ClaimStatusUnderReview, ClaimStatusApproved,
		ClaimStatusRejected, ClaimStatusReplaced:
		return true
	}
	return false
}

// WarrantyClaim is a client-initiated request alleging an issue covered by a
// warranty. A warranty may accumulate any number of claims; a rejected claim
// does not block filing another.
type WarrantyClaim struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WarrantyID uuid.UUID `gorm:"type:uuid;not null;index" json:"warranty_id"`
	Warranty   *Warranty `gorm:"foreignKey:WarrantyID" json:"warranty,omitempty"`
	ClientID   string    `gorm:"size:255;not null;index" json:"client_id"`

	// Claim content
	IssueDescription string         `gorm:"type:text;not null" json:"issue_description"`
	ProofURL         *string        `gorm:"size:500" json:"proof_url,omitempty"`
	Photos           pq.StringArray `gorm:"type:text[]" json:"photos,omitempty"`

	// Workflow state
	Status ClaimStatus `gorm:"size:20;not null;default:'submitted';index" json:"status"`

	// Review outcome, populated only on transition into approved/rejected
	ReviewerID     *string    `gorm:"size:255" json:"reviewer_id,omitempty"`
	ReviewComments *string    `gorm:"type:text" json:"review_comments,omitempty"`
	ReviewDate     *time.Time `json:"review_date,omitempty"`

	// Metadata
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Transitions []ClaimTransition `gorm:"foreignKey:ClaimID" json:"transitions,omitempty"`
}

// TableName specifies the table name for WarrantyClaim
func (WarrantyClaim) TableName() string {
	return "warranty_claims"
}

// ClaimTransition is the audit record of one workflow state change
type ClaimTransition struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClaimID uuid.UUID `gorm:"type:uuid;not null;index" json:"claim_id"`

	FromStatus ClaimStatus `gorm:"size:20;not null" json:"from_status"`
	ToStatus   ClaimStatus `gorm:"size:20;not null" json:"to_status"`
	Action     string      `gorm:"size:50;not null" json:"action"`

	// Actor information
	ActorID string `gorm:"size:255;not null" json:"actor_id"`
	Comment string `gorm:"type:text" json:"comment,omitempty"`

	TransitionedAt time.Time `gorm:"not null;index" json:"transitioned_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for ClaimTransition
func (ClaimTransition) TableName() string {
	return "claim_transitions"
}
