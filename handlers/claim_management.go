package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"portex.io/warranty/config"
	"portex.io/warranty/middleware"
	"portex.io/warranty/models"
	"portex.io/warranty/pkg/lifecycle"
)

// ClaimHandler handles the claim adjudication workflow
type ClaimHandler struct {
	db       *gorm.DB
	workflow *lifecycle.Workflow
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler() *ClaimHandler {
	return &ClaimHandler{
		db: config.DB,
		workflow: lifecycle.NewWorkflow(
			NewLifecycleStore(config.DB),
			lifecycle.SystemClock{},
			NewNotificationService(),
		),
	}
}

// FileClaimRequest represents the request to file a claim
type FileClaimRequest struct {
	WarrantyID       uuid.UUID `json:"warranty_id"`
	IssueDescription string    `json:"issue_description"`
	ProofURL         *string   `json:"proof_url,omitempty"`
	Photos           []string  `json:"photos,omitempty"`
}

// FileClaim files a claim against a claimable warranty
// POST /api/v1/claims
func (h *ClaimHandler) FileClaim(w http.ResponseWriter, r *http.Request) {
	var req FileClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	claim, err := h.workflow.FileClaim(r.Context(), lifecycle.FileClaimInput{
		WarrantyID:       req.WarrantyID,
		ClientID:         middleware.GetUserID(r),
		IssueDescription: req.IssueDescription,
		ProofURL:         req.ProofURL,
		Photos:           req.Photos,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Claim submitted successfully",
		"claim":   claim,
	})
}

// GetClaims lists claims, filterable by warranty and status
// GET /api/v1/claims?warranty_id={uuid}&status={status}
func (h *ClaimHandler) GetClaims(w http.ResponseWriter, r *http.Request) {
	query := h.db.Order("created_at DESC")

	if raw := r.URL.Query().Get("warranty_id"); raw != "" {
		warrantyID, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid warranty_id", http.StatusBadRequest)
			return
		}
		query = query.Where("warranty_id = ?", warrantyID)
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.ClaimStatus(raw)
		if !status.Valid() {
			http.Error(w, "unknown claim status", http.StatusBadRequest)
			return
		}
		query = query.Where("status = ?", status)
	}

	var claims []models.WarrantyClaim
	if err := query.Find(&claims).Error; err != nil {
		log.Printf("❌ Failed to list claims: %v", err)
		http.Error(w, "failed to fetch claims", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"claims": claims,
		"count":  len(claims),
	})
}

// GetClaim returns one claim with its transition history
// GET /api/v1/claims/{id}
func (h *ClaimHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid claim id", http.StatusBadRequest)
		return
	}

	var claim models.WarrantyClaim
	if err := h.db.
		Preload("Warranty").
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("transitioned_at ASC")
		}).
		First(&claim, "id = ?", id).Error; err != nil {
		http.Error(w, "claim not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"claim": claim,
	})
}

// ReviewRequest carries the reviewer's comments for a decision
type ReviewRequest struct {
	Comments string `json:"comments,omitempty"`
}

// MarkUnderReview moves a submitted claim into review
// POST /api/v1/claims/{id}/review
func (h *ClaimHandler) MarkUnderReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid claim id", http.StatusBadRequest)
		return
	}

	claim, err := h.workflow.MarkUnderReview(r.Context(), id, middleware.GetUserID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Claim is under review",
		"claim":   claim,
	})
}

// ApproveClaim resolves a claim in the client's favour
// POST /api/v1/claims/{id}/approve
func (h *ClaimHandler) ApproveClaim(w http.ResponseWriter, r *http.Request) {
	h.resolveClaim(w, r, h.workflow.Approve, "Claim approved")
}

// RejectClaim resolves a claim against the client
// POST /api/v1/claims/{id}/reject
func (h *ClaimHandler) RejectClaim(w http.ResponseWriter, r *http.Request) {
	h.resolveClaim(w, r, h.workflow.Reject, "Claim rejected")
}

func (h *ClaimHandler) resolveClaim(
	w http.ResponseWriter,
	r *http.Request,
	resolve func(ctx context.Context, claimID uuid.UUID, reviewerID, comments string) (*models.WarrantyClaim, error),
	message string,
) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid claim id", http.StatusBadRequest)
		return
	}

	var req ReviewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	claim, err := resolve(r.Context(), id, middleware.GetUserID(r), req.Comments)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": message,
		"claim":   claim,
	})
}

// ConfirmReplacement records the confirmed physical replacement
// POST /api/v1/claims/{id}/replaced
func (h *ClaimHandler) ConfirmReplacement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid claim id", http.StatusBadRequest)
		return
	}

	claim, err := h.workflow.MarkReplaced(r.Context(), id, middleware.GetUserID(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Replacement confirmed",
		"claim":   claim,
	})
}
