package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"portex.io/warranty/models"
	"portex.io/warranty/pkg/lifecycle"
)

// warrantyStore implements lifecycle.Store on postgres via gorm.
//
// The engine's atomicity contract is met two ways: warranty inserts rely on
// the composite unique index on (project_id, item_id), so a concurrent create
// race surfaces as a duplicate-key error; claim transitions take a row lock
// and re-check the status inside one transaction, so concurrent transitions
// on the same claim cannot both succeed.
type warrantyStore struct {
	db *gorm.DB
}

// NewLifecycleStore wraps a gorm connection as the engine's Store.
func NewLifecycleStore(db *gorm.DB) lifecycle.Store {
	return &warrantyStore{db: db}
}

func (s *warrantyStore) FindWarranty(ctx context.Context, projectID, itemID uuid.UUID) (*models.Warranty, error) {
	var warranty models.Warranty
	err := s.db.WithContext(ctx).
		Where("project_id = ? AND item_id = ?", projectID, itemID).
		First(&warranty).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &warranty, nil
}

func (s *warrantyStore) InsertWarranty(ctx context.Context, warranty *models.Warranty) error {
	err := s.db.WithContext(ctx).Create(warranty).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return lifecycle.ErrDuplicateWarranty
	}
	return err
}

func (s *warrantyStore) GetWarranty(ctx context.Context, id uuid.UUID) (*models.Warranty, error) {
	var warranty models.Warranty
	err := s.db.WithContext(ctx).First(&warranty, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &warranty, nil
}

func (s *warrantyStore) ListWarrantiesByProject(ctx context.Context, projectID uuid.UUID) ([]models.Warranty, error) {
	var warranties []models.Warranty
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&warranties).Error
	return warranties, err
}

func (s *warrantyStore) InsertClaim(ctx context.Context, claim *models.WarrantyClaim) error {
	return s.db.WithContext(ctx).Create(claim).Error
}

func (s *warrantyStore) GetClaim(ctx context.Context, id uuid.UUID) (*models.WarrantyClaim, error) {
	var claim models.WarrantyClaim
	err := s.db.WithContext(ctx).First(&claim, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (s *warrantyStore) UpdateClaim(ctx context.Context, id uuid.UUID, allowedFrom []models.ClaimStatus, patch lifecycle.ClaimPatch) (*models.WarrantyClaim, error) {
	var claim models.WarrantyClaim

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the row so a concurrent transition observes the new state.
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&claim, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lifecycle.ErrNotFound
		}
		if err != nil {
			return err
		}

		permitted := false
		for _, from := range allowedFrom {
			if claim.Status == from {
				permitted = true
				break
			}
		}
		if !permitted {
			return fmt.Errorf("%w: claim %s is %s", lifecycle.ErrInvalidTransition, id, claim.Status)
		}

		transition := models.ClaimTransition{
			ClaimID:        claim.ID,
			FromStatus:     claim.Status,
			ToStatus:       patch.Status,
			Action:         patch.Action,
			ActorID:        patch.ActorID,
			Comment:        patch.Comment,
			TransitionedAt: patch.At,
		}

		claim.Status = patch.Status
		if patch.ReviewerID != nil {
			claim.ReviewerID = patch.ReviewerID
		}
		if patch.ReviewComments != nil {
			claim.ReviewComments = patch.ReviewComments
		}
		if patch.ReviewDate != nil {
			claim.ReviewDate = patch.ReviewDate
		}

		if err := tx.Save(&claim).Error; err != nil {
			return fmt.Errorf("failed to update claim: %w", err)
		}
		if err := tx.Create(&transition).Error; err != nil {
			return fmt.Errorf("failed to record claim transition: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// materialCatalog implements lifecycle.Catalog against the material_items
// read model.
type materialCatalog struct {
	db *gorm.DB
}

// NewMaterialCatalog wraps a gorm connection as the engine's Catalog.
func NewMaterialCatalog(db *gorm.DB) lifecycle.Catalog {
	return &materialCatalog{db: db}
}

// WarrantyDeclaration returns the item's raw warranty-period declaration as
// the supplier stored it: a json.Number or a string. The engine's parser
// handles both plus the missing/unparsable fallback.
func (c *materialCatalog) WarrantyDeclaration(ctx context.Context, itemID uuid.UUID) (interface{}, error) {
	var item models.MaterialItem
	err := c.db.WithContext(ctx).First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, lifecycle.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if len(item.WarrantyPeriod) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(item.WarrantyPeriod))
	dec.UseNumber()
	var declaration interface{}
	if err := dec.Decode(&declaration); err != nil {
		return nil, nil
	}
	return declaration, nil
}
