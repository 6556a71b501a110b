// Package lifecycle implements the warranty & claim lifecycle engine: how a
// warranty is created for a (project, material) pair, how its status is
// derived over time, the grace window during which an expired warranty stays
// claimable, and the adjudication workflow a claim passes through.
//
// The engine holds no mutable state between calls; every operation is a
// function of its inputs plus a read/write through the collaborator
// interfaces below. Persistence, the material catalog, the clock and
// notification delivery are all injected.
package lifecycle

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"portex.io/warranty/models"
)

// Store is the persistence collaborator. Implementations must provide two
// atomicity guarantees: InsertWarranty performs its duplicate check and insert
// as a single unit with respect to concurrent inserts for the same
// (project, item) pair, and UpdateClaim applies its patch only while the
// claim's status is one of allowedFrom, so concurrent transitions on the same
// claim cannot both succeed.
type Store interface {
	// FindWarranty returns the warranty for the pair, or ErrNotFound.
	FindWarranty(ctx context.Context, projectID, itemID uuid.UUID) (*models.Warranty, error)
	// InsertWarranty persists a new warranty, returning ErrDuplicateWarranty
	// when one already exists for the (project, item) pair.
	InsertWarranty(ctx context.Context, w *models.Warranty) error
	GetWarranty(ctx context.Context, id uuid.UUID) (*models.Warranty, error)
	ListWarrantiesByProject(ctx context.Context, projectID uuid.UUID) ([]models.Warranty, error)

	InsertClaim(ctx context.Context, c *models.WarrantyClaim) error
	GetClaim(ctx context.Context, id uuid.UUID) (*models.WarrantyClaim, error)
	// UpdateClaim applies patch if and only if the claim's current status is
	// one of allowedFrom, recording the transition in the same unit of work.
	// It returns ErrInvalidTransition when the claim exists in a different
	// state, and ErrNotFound when it does not exist.
	UpdateClaim(ctx context.Context, id uuid.UUID, allowedFrom []models.ClaimStatus, patch ClaimPatch) (*models.WarrantyClaim, error)
}

// ClaimPatch describes one claim state change plus its audit context.
type ClaimPatch struct {
	Status models.ClaimStatus
	Action string
	At     time.Time

	// Actor of the transition (reviewer or system process)
	ActorID string
	Comment string

	// Review outcome, set only on transition into approved/rejected
	ReviewerID     *string
	ReviewComments *string
	ReviewDate     *time.Time
}

// Catalog looks up a material's raw warranty-period declaration. The value is
// an untyped number-or-string and goes straight to ParseMonths.
type Catalog interface {
	WarrantyDeclaration(ctx context.Context, itemID uuid.UUID) (interface{}, error)
}

// Clock supplies the current time. It is injected rather than read globally
// so status derivation and grace-window checks stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Notifier dispatches a notification event. Delivery is fire-and-forget: the
// engine neither retries nor awaits confirmation, and a failure must never
// block or roll back the business mutation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event models.NotificationType, payload map[string]interface{}) error
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, models.NotificationType, map[string]interface{}) error {
	return nil
}

// notify dispatches best-effort: failures are logged and swallowed.
func notify(ctx context.Context, n Notifier, event models.NotificationType, payload map[string]interface{}) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event, payload); err != nil {
		log.Printf("⚠️  Notification %s not delivered: %v", event, err)
	}
}
