package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"portex.io/warranty/models"
)

// Workflow owns claim records and their state machine:
//
//	submitted -> under_review -> approved -> replaced
//	     \            \----------> rejected
//	      \-----------------------> approved/rejected
//
// Rejected and replaced are terminal; approved only permits the move to
// replaced. Every other (state, operation) pair fails with
// ErrInvalidTransition, and a failed transition never mutates the warranty or
// any sibling claim.
type Workflow struct {
	store    Store
	clock    Clock
	notifier Notifier
}

// NewWorkflow creates a claim workflow. A nil clock defaults to the system
// clock and a nil notifier to a no-op.
func NewWorkflow(store Store, clock Clock, notifier Notifier) *Workflow {
	if clock == nil {
		clock = SystemClock{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Workflow{store: store, clock: clock, notifier: notifier}
}

// FileClaimInput carries the client-supplied fields of a new claim.
type FileClaimInput struct {
	WarrantyID       uuid.UUID
	ClientID         string
	IssueDescription string
	ProofURL         *string
	Photos           []string
}

// FileClaim creates a claim in the submitted state. The warranty must be
// claimable: active, or expired no longer than the grace window ago. A
// warranty may accumulate any number of claims.
func (wf *Workflow) FileClaim(ctx context.Context, in FileClaimInput) (*models.WarrantyClaim, error) {
	if in.WarrantyID == uuid.Nil {
		return nil, required("warranty_id")
	}
	if in.ClientID == "" {
		return nil, required("client_id")
	}
	if strings.TrimSpace(in.IssueDescription) == "" {
		return nil, required("issue_description")
	}

	warranty, err := wf.store.GetWarranty(ctx, in.WarrantyID)
	if err != nil {
		return nil, err
	}

	now := wf.clock.Now()
	if !warranty.ClaimableAt(now) {
		return nil, fmt.Errorf("%w: warranty %s ended %s and the %d-day grace window has passed",
			ErrNotClaimable, warranty.ID,
			models.DateOf(warranty.WarrantyEnd).Format("2006-01-02"), models.ClaimGraceDays)
	}

	claim := &models.WarrantyClaim{
		WarrantyID:       warranty.ID,
		ClientID:         in.ClientID,
		IssueDescription: strings.TrimSpace(in.IssueDescription),
		ProofURL:         in.ProofURL,
		Photos:           in.Photos,
		Status:           models.ClaimStatusSubmitted,
	}
	if err := wf.store.InsertClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	log.Printf("✅ Filed claim %s against warranty %s (status: %s)", claim.ID, warranty.ID, claim.Status)

	notify(ctx, wf.notifier, models.NotificationTypeClaimFiled, map[string]interface{}{
		"claim_id":    claim.ID.String(),
		"warranty_id": warranty.ID.String(),
		"client_id":   claim.ClientID,
	})

	return claim, nil
}

// MarkUnderReview moves a submitted claim into under_review. Calling it on a
// claim already under review is an idempotent no-op; calling it from any
// terminal state fails with ErrInvalidTransition.
func (wf *Workflow) MarkUnderReview(ctx context.Context, claimID uuid.UUID, actorID string) (*models.WarrantyClaim, error) {
	claim, err := wf.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim.Status == models.ClaimStatusUnderReview {
		return claim, nil
	}

	updated, err := wf.store.UpdateClaim(ctx, claimID,
		[]models.ClaimStatus{models.ClaimStatusSubmitted},
		ClaimPatch{
			Status:  models.ClaimStatusUnderReview,
			Action:  "mark_under_review",
			ActorID: actorID,
			At:      wf.clock.Now(),
		})
	if errors.Is(err, ErrInvalidTransition) {
		// Lost a race; still a no-op if the winner also moved it under review.
		if current, gerr := wf.store.GetClaim(ctx, claimID); gerr == nil && current.Status == models.ClaimStatusUnderReview {
			return current, nil
		}
		return nil, err
	}
	return updated, err
}

// Approve resolves a claim in the client's favour, recording the reviewer,
// comments and review date. Permitted from submitted or under_review only.
func (wf *Workflow) Approve(ctx context.Context, claimID uuid.UUID, reviewerID, comments string) (*models.WarrantyClaim, error) {
	return wf.resolve(ctx, claimID, reviewerID, comments, models.ClaimStatusApproved)
}

// Reject resolves a claim against the client, recording the reviewer,
// comments and review date. Permitted from submitted or under_review only.
func (wf *Workflow) Reject(ctx context.Context, claimID uuid.UUID, reviewerID, comments string) (*models.WarrantyClaim, error) {
	return wf.resolve(ctx, claimID, reviewerID, comments, models.ClaimStatusRejected)
}

func (wf *Workflow) resolve(ctx context.Context, claimID uuid.UUID, reviewerID, comments string, to models.ClaimStatus) (*models.WarrantyClaim, error) {
	if claimID == uuid.Nil {
		return nil, required("claim_id")
	}
	if reviewerID == "" {
		return nil, required("reviewer_id")
	}

	action := "approve"
	event := models.NotificationTypeClaimApproved
	if to == models.ClaimStatusRejected {
		action = "reject"
		event = models.NotificationTypeClaimRejected
	}

	now := wf.clock.Now()
	patch := ClaimPatch{
		Status:     to,
		Action:     action,
		ActorID:    reviewerID,
		Comment:    comments,
		ReviewerID: &reviewerID,
		ReviewDate: &now,
		At:         now,
	}
	if comments != "" {
		patch.ReviewComments = &comments
	}

	claim, err := wf.store.UpdateClaim(ctx, claimID,
		[]models.ClaimStatus{models.ClaimStatusSubmitted, models.ClaimStatusUnderReview}, patch)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Claim %s %s by %s", claimID, to, reviewerID)

	notify(ctx, wf.notifier, event, map[string]interface{}{
		"claim_id":    claim.ID.String(),
		"warranty_id": claim.WarrantyID.String(),
		"client_id":   claim.ClientID,
		"reviewer_id": reviewerID,
		"comments":    comments,
	})

	return claim, nil
}

// MarkReplaced records that the physical replacement for an approved claim
// has been confirmed. Legal from approved only; replaced is terminal.
func (wf *Workflow) MarkReplaced(ctx context.Context, claimID uuid.UUID, actorID string) (*models.WarrantyClaim, error) {
	if claimID == uuid.Nil {
		return nil, required("claim_id")
	}

	claim, err := wf.store.UpdateClaim(ctx, claimID,
		[]models.ClaimStatus{models.ClaimStatusApproved},
		ClaimPatch{
			Status:  models.ClaimStatusReplaced,
			Action:  "mark_replaced",
			ActorID: actorID,
			At:      wf.clock.Now(),
		})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Claim %s marked replaced", claimID)

	notify(ctx, wf.notifier, models.NotificationTypeClaimReplaced, map[string]interface{}{
		"claim_id":    claim.ID.String(),
		"warranty_id": claim.WarrantyID.String(),
		"client_id":   claim.ClientID,
	})

	return claim, nil
}

// GetClaim fetches one claim by id.
func (wf *Workflow) GetClaim(ctx context.Context, id uuid.UUID) (*models.WarrantyClaim, error) {
	return wf.store.GetClaim(ctx, id)
}
