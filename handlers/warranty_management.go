package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"portex.io/warranty/config"
	"portex.io/warranty/middleware"
	"portex.io/warranty/models"
	"portex.io/warranty/pkg/lifecycle"
)

// WarrantyHandler handles warranty registry operations
type WarrantyHandler struct {
	db       *gorm.DB
	registry *lifecycle.Registry
}

// NewWarrantyHandler creates a new warranty handler
func NewWarrantyHandler() *WarrantyHandler {
	return &WarrantyHandler{
		db: config.DB,
		registry: lifecycle.NewRegistry(
			NewLifecycleStore(config.DB),
			NewMaterialCatalog(config.DB),
			lifecycle.SystemClock{},
			NewNotificationService(),
		),
	}
}

// CreateWarrantyRequest represents the request to register a warranty
type CreateWarrantyRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
	ItemID    uuid.UUID `json:"item_id"`
	ClientID  string    `json:"client_id"`
	// Start is a calendar date ("2006-01-02"); defaults to today when empty.
	Start string `json:"start,omitempty"`
}

// CreateWarranty registers a warranty for a (project, material) pair
// POST /api/v1/warranties
func (h *WarrantyHandler) CreateWarranty(w http.ResponseWriter, r *http.Request) {
	var req CreateWarrantyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	in := lifecycle.CreateWarrantyInput{
		ProjectID: req.ProjectID,
		ItemID:    req.ItemID,
		ClientID:  req.ClientID,
		CreatedBy: middleware.GetUserID(r),
	}
	if req.Start != "" {
		start, err := time.Parse("2006-01-02", req.Start)
		if err != nil {
			http.Error(w, "start must be a date in 2006-01-02 form", http.StatusBadRequest)
			return
		}
		in.Start = &start
	}

	warranty, err := h.registry.CreateWarranty(r.Context(), in)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Warranty registered successfully",
		"warranty": warranty.ToDTO(time.Now().UTC()),
	})
}

// GetWarranties lists a project's warranties with their derived status
// GET /api/v1/warranties?project_id={uuid}
func (h *WarrantyHandler) GetWarranties(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.URL.Query().Get("project_id"))
	if err != nil {
		http.Error(w, "project_id query parameter is required", http.StatusBadRequest)
		return
	}

	warranties, err := h.registry.ListProjectWarranties(r.Context(), projectID)
	if err != nil {
		log.Printf("❌ Failed to list warranties for project %s: %v", projectID, err)
		http.Error(w, "failed to fetch warranties", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	dtos := make([]models.WarrantyDTO, len(warranties))
	for i := range warranties {
		dtos[i] = warranties[i].ToDTO(now)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"warranties": dtos,
		"count":      len(dtos),
	})
}

// GetWarranty returns one warranty with derived status and its claims
// GET /api/v1/warranties/{id}
func (h *WarrantyHandler) GetWarranty(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid warranty id", http.StatusBadRequest)
		return
	}

	var warranty models.Warranty
	if err := h.db.Preload("Claims").First(&warranty, "id = ?", id).Error; err != nil {
		http.Error(w, "warranty not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"warranty": warranty.ToDTO(time.Now().UTC()),
	})
}

// AvailableItemsRequest carries the candidate items of a creation intent
type AvailableItemsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// GetAvailableItems filters candidate items down to those not already
// warrantied for the project, regardless of the existing warranty's status
// POST /api/v1/projects/{projectId}/available-items
func (h *WarrantyHandler) GetAvailableItems(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(mux.Vars(r)["projectId"])
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	var req AvailableItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	available, err := h.registry.AvailableItems(r.Context(), projectID, req.ItemIDs)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"available_items": available,
		"count":           len(available),
	})
}
