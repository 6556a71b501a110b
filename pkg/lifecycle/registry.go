package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"portex.io/warranty/models"
)

// Registry owns warranty records: creation with the one-warranty-ever-per-
// (project, item) invariant, derived status, and the availability check used
// by callers building a creation request.
type Registry struct {
	store    Store
	catalog  Catalog
	clock    Clock
	notifier Notifier
}

// NewRegistry creates a registry. A nil clock defaults to the system clock
// and a nil notifier to a no-op.
func NewRegistry(store Store, catalog Catalog, clock Clock, notifier Notifier) *Registry {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Registry{store: store, catalog: catalog, clock: clock, notifier: notifier}
}

// CreateWarrantyInput carries the caller-supplied fields of a new warranty.
type CreateWarrantyInput struct {
	ProjectID uuid.UUID
	ItemID    uuid.UUID
	ClientID  string

	// Start defaults to the current date when nil.
	Start *time.Time

	CreatedBy string
}

// CreateWarranty registers a warranty for a (project, material) pair. The end
// date is computed once, from the start date plus the material's parsed
// duration declaration, and stored; it is never recomputed. A second warranty
// for the same pair fails with ErrDuplicateWarranty no matter what the first
// one's derived status is.
func (rg *Registry) CreateWarranty(ctx context.Context, in CreateWarrantyInput) (*models.Warranty, error) {
	if in.ProjectID == uuid.Nil {
		return nil, required("project_id")
	}
	if in.ItemID == uuid.Nil {
		return nil, required("item_id")
	}
	if in.ClientID == "" {
		return nil, required("client_id")
	}

	// Early duplicate check for a friendly error; the store's unique index is
	// what actually guarantees the invariant under concurrent creates.
	if _, err := rg.store.FindWarranty(ctx, in.ProjectID, in.ItemID); err == nil {
		return nil, ErrDuplicateWarranty
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing warranty: %w", err)
	}

	declaration, err := rg.catalog.WarrantyDeclaration(ctx, in.ItemID)
	if err != nil {
		// Fallback policy: creation must always be able to proceed.
		log.Printf("⚠️  No warranty declaration for item %s, using default: %v", in.ItemID, err)
		declaration = nil
	}
	months := ParseMonths(declaration)

	now := rg.clock.Now()
	start := now
	if in.Start != nil {
		start = *in.Start
	}
	start = models.DateOf(start)
	end := AddMonths(start, months)

	warranty := &models.Warranty{
		ProjectID:      in.ProjectID,
		ItemID:         in.ItemID,
		ClientID:       in.ClientID,
		WarrantyStart:  start,
		WarrantyEnd:    end,
		DurationMonths: months,
		CreatedBy:      in.CreatedBy,
	}
	// Snapshot only; every decision recomputes via StatusAt.
	warranty.Status = warranty.StatusAt(now)

	if err := rg.store.InsertWarranty(ctx, warranty); err != nil {
		return nil, err
	}

	log.Printf("✅ Created warranty %s for project %s item %s (%d months, ends %s)",
		warranty.ID, in.ProjectID, in.ItemID, months, end.Format("2006-01-02"))

	notify(ctx, rg.notifier, models.NotificationTypeWarrantyCreated, map[string]interface{}{
		"warranty_id":  warranty.ID.String(),
		"client_id":    warranty.ClientID,
		"project_id":   warranty.ProjectID.String(),
		"item_id":      warranty.ItemID.String(),
		"warranty_end": end.Format("2006-01-02"),
	})

	return warranty, nil
}

// DerivedStatus recomputes the warranty's status at the current time. This is
// the sole source of truth; the stored status column is informational only.
func (rg *Registry) DerivedStatus(w *models.Warranty) models.WarrantyStatus {
	return w.StatusAt(rg.clock.Now())
}

// GetWarranty fetches one warranty by id.
func (rg *Registry) GetWarranty(ctx context.Context, id uuid.UUID) (*models.Warranty, error) {
	return rg.store.GetWarranty(ctx, id)
}

// ListProjectWarranties returns all warranties of a project.
func (rg *Registry) ListProjectWarranties(ctx context.Context, projectID uuid.UUID) ([]models.Warranty, error) {
	return rg.store.ListWarrantiesByProject(ctx, projectID)
}

// AvailableItems filters candidate item ids down to those not already
// warrantied for the project. A warrantied item stays unavailable forever,
// regardless of the existing warranty's derived status.
func (rg *Registry) AvailableItems(ctx context.Context, projectID uuid.UUID, candidates []uuid.UUID) ([]uuid.UUID, error) {
	if projectID == uuid.Nil {
		return nil, required("project_id")
	}

	existing, err := rg.store.ListWarrantiesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project warranties: %w", err)
	}

	taken := make(map[uuid.UUID]struct{}, len(existing))
	for _, w := range existing {
		taken[w.ItemID] = struct{}{}
	}

	available := make([]uuid.UUID, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := taken[id]; !ok {
			available = append(available, id)
		}
	}
	return available, nil
}
