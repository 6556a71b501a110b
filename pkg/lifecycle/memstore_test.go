package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"portex.io/warranty/models"
)

// memStore is an in-memory Store with the same atomicity semantics the
// postgres adapter provides: pair uniqueness on insert and compare-and-swap
// claim updates.
type memStore struct {
	warranties  map[uuid.UUID]*models.Warranty
	byPair      map[[2]uuid.UUID]uuid.UUID
	claims      map[uuid.UUID]*models.WarrantyClaim
	transitions []models.ClaimTransition
}

func newMemStore() *memStore {
	return &memStore{
		warranties: make(map[uuid.UUID]*models.Warranty),
		byPair:     make(map[[2]uuid.UUID]uuid.UUID),
		claims:     make(map[uuid.UUID]*models.WarrantyClaim),
	}
}

func (s *memStore) FindWarranty(_ context.Context, projectID, itemID uuid.UUID) (*models.Warranty, error) {
	if id, ok := s.byPair[[2]uuid.UUID{projectID, itemID}]; ok {
		return s.warranties[id], nil
	}
	return nil, ErrNotFound
}

func (s *memStore) InsertWarranty(_ context.Context, w *models.Warranty) error {
	key := [2]uuid.UUID{w.ProjectID, w.ItemID}
	if _, ok := s.byPair[key]; ok {
		return ErrDuplicateWarranty
	}
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	s.warranties[w.ID] = w
	s.byPair[key] = w.ID
	return nil
}

func (s *memStore) GetWarranty(_ context.Context, id uuid.UUID) (*models.Warranty, error) {
	if w, ok := s.warranties[id]; ok {
		return w, nil
	}
	return nil, ErrNotFound
}

func (s *memStore) ListWarrantiesByProject(_ context.Context, projectID uuid.UUID) ([]models.Warranty, error) {
	var out []models.Warranty
	for _, w := range s.warranties {
		if w.ProjectID == projectID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (s *memStore) InsertClaim(_ context.Context, c *models.WarrantyClaim) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.claims[c.ID] = c
	return nil
}

func (s *memStore) GetClaim(_ context.Context, id uuid.UUID) (*models.WarrantyClaim, error) {
	if c, ok := s.claims[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (s *memStore) UpdateClaim(_ context.Context, id uuid.UUID, allowedFrom []models.ClaimStatus, patch ClaimPatch) (*models.WarrantyClaim, error) {
	c, ok := s.claims[id]
	if !ok {
		return nil, ErrNotFound
	}
	permitted := false
	for _, from := range allowedFrom {
		if c.Status == from {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, ErrInvalidTransition
	}

	s.transitions = append(s.transitions, models.ClaimTransition{
		ClaimID:        c.ID,
		FromStatus:     c.Status,
		ToStatus:       patch.Status,
		Action:         patch.Action,
		ActorID:        patch.ActorID,
		Comment:        patch.Comment,
		TransitionedAt: patch.At,
	})

	c.Status = patch.Status
	if patch.ReviewerID != nil {
		c.ReviewerID = patch.ReviewerID
	}
	if patch.ReviewComments != nil {
		c.ReviewComments = patch.ReviewComments
	}
	if patch.ReviewDate != nil {
		c.ReviewDate = patch.ReviewDate
	}
	return c, nil
}

// mapCatalog serves warranty declarations from a fixture map.
type mapCatalog map[uuid.UUID]interface{}

func (c mapCatalog) WarrantyDeclaration(_ context.Context, itemID uuid.UUID) (interface{}, error) {
	if decl, ok := c[itemID]; ok {
		return decl, nil
	}
	return nil, ErrNotFound
}

// fixedClock is an adjustable test clock.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

// recordingNotifier captures events and optionally fails every dispatch.
type recordingNotifier struct {
	events []models.NotificationType
	fail   error
}

func (n *recordingNotifier) Notify(_ context.Context, event models.NotificationType, _ map[string]interface{}) error {
	n.events = append(n.events, event)
	return n.fail
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
