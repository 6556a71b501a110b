package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"portex.io/warranty/models"
)

// fixture creates a warranty running 2025-01-01 .. 2026-01-01 ("12 months").
func fixture(t *testing.T) (*memStore, *fixedClock, *recordingNotifier, *Workflow, *models.Warranty) {
	t.Helper()
	store := newMemStore()
	itemID := uuid.New()
	clock := &fixedClock{t: date(2025, time.January, 1)}
	notifier := &recordingNotifier{}

	registry := NewRegistry(store, mapCatalog{itemID: "12 months"}, clock, notifier)
	start := date(2025, time.January, 1)
	warranty, err := registry.CreateWarranty(context.Background(), CreateWarrantyInput{
		ProjectID: uuid.New(),
		ItemID:    itemID,
		ClientID:  "C1",
		Start:     &start,
	})
	if err != nil {
		t.Fatalf("fixture warranty: %v", err)
	}

	return store, clock, notifier, NewWorkflow(store, clock, notifier), warranty
}

func TestClaimLifecycleEndToEnd(t *testing.T) {
	_, clock, notifier, workflow, warranty := fixture(t)

	if !warranty.WarrantyEnd.Equal(date(2026, time.January, 1)) {
		t.Fatalf("warranty end = %s, expected 2026-01-01", warranty.WarrantyEnd)
	}

	clock.t = date(2025, time.June, 1)
	if got := warranty.StatusAt(clock.Now()); got != models.WarrantyStatusActive {
		t.Fatalf("status = %s, expected active", got)
	}

	claim, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID:       warranty.ID,
		ClientID:         "C1",
		IssueDescription: "Tile surface cracked along the kitchen counter",
	})
	if err != nil {
		t.Fatalf("FileClaim failed: %v", err)
	}
	if claim.Status != models.ClaimStatusSubmitted {
		t.Errorf("status = %s, expected submitted", claim.Status)
	}

	claim, err = workflow.Approve(context.Background(), claim.ID, "R1", "replacement authorized")
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if claim.Status != models.ClaimStatusApproved {
		t.Errorf("status = %s, expected approved", claim.Status)
	}
	if claim.ReviewerID == nil || *claim.ReviewerID != "R1" {
		t.Errorf("reviewer = %v, expected R1", claim.ReviewerID)
	}
	if claim.ReviewDate == nil || !claim.ReviewDate.Equal(clock.Now()) {
		t.Errorf("review date = %v, expected %s", claim.ReviewDate, clock.Now())
	}
	if claim.ReviewComments == nil || *claim.ReviewComments != "replacement authorized" {
		t.Errorf("review comments = %v", claim.ReviewComments)
	}

	claim, err = workflow.MarkReplaced(context.Background(), claim.ID, "W4")
	if err != nil {
		t.Fatalf("MarkReplaced failed: %v", err)
	}
	if claim.Status != models.ClaimStatusReplaced {
		t.Errorf("status = %s, expected replaced", claim.Status)
	}

	expected := []models.NotificationType{
		models.NotificationTypeWarrantyCreated,
		models.NotificationTypeClaimFiled,
		models.NotificationTypeClaimApproved,
		models.NotificationTypeClaimReplaced,
	}
	if len(notifier.events) != len(expected) {
		t.Fatalf("events = %v, expected %v", notifier.events, expected)
	}
	for i, event := range expected {
		if notifier.events[i] != event {
			t.Errorf("event[%d] = %s, expected %s", i, notifier.events[i], event)
		}
	}
}

func TestFileClaimGraceWindowBoundary(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)

	// 90 days after the 2026-01-01 end date is 2026-04-01, still claimable.
	clock.t = date(2026, time.April, 1)
	if _, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID:       warranty.ID,
		ClientID:         "C1",
		IssueDescription: "paint peeling",
	}); err != nil {
		t.Fatalf("filing on the last grace day failed: %v", err)
	}

	clock.t = date(2026, time.April, 2)
	_, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID:       warranty.ID,
		ClientID:         "C1",
		IssueDescription: "paint peeling",
	})
	if !errors.Is(err, ErrNotClaimable) {
		t.Errorf("err = %v, expected ErrNotClaimable one day past the grace window", err)
	}
}

func TestFileClaimBeforeWarrantyStart(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)

	clock.t = date(2024, time.December, 15)
	_, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID:       warranty.ID,
		ClientID:         "C1",
		IssueDescription: "premature claim",
	})
	if !errors.Is(err, ErrNotClaimable) {
		t.Errorf("err = %v, expected ErrNotClaimable before warranty start", err)
	}
}

func TestFileClaimValidation(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)

	tests := []struct {
		name string
		in   FileClaimInput
	}{
		{"empty description", FileClaimInput{WarrantyID: warranty.ID, ClientID: "C1"}},
		{"blank description", FileClaimInput{WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "   "}},
		{"missing client", FileClaimInput{WarrantyID: warranty.ID, IssueDescription: "broken"}},
		{"missing warranty", FileClaimInput{ClientID: "C1", IssueDescription: "broken"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := workflow.FileClaim(context.Background(), tt.in); !IsValidation(err) {
				t.Errorf("err = %v, expected a ValidationError", err)
			}
		})
	}

	_, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID:       uuid.New(),
		ClientID:         "C1",
		IssueDescription: "broken",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound for unknown warranty", err)
	}
}

func TestRejectedClaimDoesNotBlockAnother(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)

	first, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "scratched panel",
	})
	if err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := workflow.Reject(context.Background(), first.ID, "R1", "normal wear"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	second, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "panel now delaminating",
	})
	if err != nil {
		t.Fatalf("second claim after rejection failed: %v", err)
	}
	if second.ID == first.ID {
		t.Error("second claim reused the first claim's id")
	}
}

func TestMarkUnderReviewIdempotent(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)

	claim, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "leaking joint",
	})
	if err != nil {
		t.Fatalf("file: %v", err)
	}

	claim, err = workflow.MarkUnderReview(context.Background(), claim.ID, "R1")
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	if claim.Status != models.ClaimStatusUnderReview {
		t.Fatalf("status = %s, expected under_review", claim.Status)
	}

	// Second call is a no-op, not an error.
	claim, err = workflow.MarkUnderReview(context.Background(), claim.ID, "R1")
	if err != nil {
		t.Fatalf("repeated mark errored: %v", err)
	}
	if claim.Status != models.ClaimStatusUnderReview {
		t.Errorf("status = %s after repeat, expected under_review", claim.Status)
	}
}

func TestTransitionTotality(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)
	ctx := context.Background()

	file := func() uuid.UUID {
		c, err := workflow.FileClaim(ctx, FileClaimInput{
			WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "defect",
		})
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		return c.ID
	}

	// approve twice: the second call must observe the terminal state
	approved := file()
	if _, err := workflow.Approve(ctx, approved, "R1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := workflow.Approve(ctx, approved, "R2", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second approve: err = %v, expected ErrInvalidTransition", err)
	}

	// reject then replace: only approved -> replaced is legal
	rejected := file()
	if _, err := workflow.Reject(ctx, rejected, "R1", "not covered"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := workflow.MarkReplaced(ctx, rejected, "W4"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("replace after reject: err = %v, expected ErrInvalidTransition", err)
	}
	if _, err := workflow.MarkUnderReview(ctx, rejected, "R1"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("review after reject: err = %v, expected ErrInvalidTransition", err)
	}
	if _, err := workflow.Approve(ctx, rejected, "R1", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve after reject: err = %v, expected ErrInvalidTransition", err)
	}

	// replaced is terminal
	replaced := file()
	if _, err := workflow.Approve(ctx, replaced, "R1", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := workflow.MarkReplaced(ctx, replaced, "W4"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := workflow.MarkReplaced(ctx, replaced, "W4"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second replace: err = %v, expected ErrInvalidTransition", err)
	}
	if _, err := workflow.Reject(ctx, replaced, "R1", ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("reject after replace: err = %v, expected ErrInvalidTransition", err)
	}

	// replacing a merely submitted claim skips approval and must fail
	submitted := file()
	if _, err := workflow.MarkReplaced(ctx, submitted, "W4"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("replace from submitted: err = %v, expected ErrInvalidTransition", err)
	}

	// unknown claim ids are NotFound, not InvalidTransition
	if _, err := workflow.Approve(ctx, uuid.New(), "R1", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown claim: err = %v, expected ErrNotFound", err)
	}
}

func TestApproveRequiresReviewer(t *testing.T) {
	_, clock, _, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)

	claim, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "defect",
	})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, err := workflow.Approve(context.Background(), claim.ID, "", "ok"); !IsValidation(err) {
		t.Errorf("err = %v, expected a ValidationError for missing reviewer", err)
	}
}

func TestNotifierFailureNeverFailsTransition(t *testing.T) {
	_, clock, notifier, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)
	notifier.fail = errors.New("smtp relay unreachable")

	claim, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "defect",
	})
	if err != nil {
		t.Fatalf("FileClaim must succeed despite notifier failure: %v", err)
	}
	if _, err := workflow.Approve(context.Background(), claim.ID, "R1", ""); err != nil {
		t.Fatalf("Approve must succeed despite notifier failure: %v", err)
	}
}

func TestTransitionsAreAudited(t *testing.T) {
	store, clock, _, workflow, warranty := fixture(t)
	clock.t = date(2025, time.June, 1)

	claim, err := workflow.FileClaim(context.Background(), FileClaimInput{
		WarrantyID: warranty.ID, ClientID: "C1", IssueDescription: "defect",
	})
	if err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, err := workflow.MarkUnderReview(context.Background(), claim.ID, "R1"); err != nil {
		t.Fatalf("review: %v", err)
	}
	if _, err := workflow.Approve(context.Background(), claim.ID, "R1", "ok"); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if len(store.transitions) != 2 {
		t.Fatalf("recorded %d transitions, expected 2", len(store.transitions))
	}
	first, second := store.transitions[0], store.transitions[1]
	if first.FromStatus != models.ClaimStatusSubmitted || first.ToStatus != models.ClaimStatusUnderReview {
		t.Errorf("first transition %s -> %s", first.FromStatus, first.ToStatus)
	}
	if second.FromStatus != models.ClaimStatusUnderReview || second.ToStatus != models.ClaimStatusApproved {
		t.Errorf("second transition %s -> %s", second.FromStatus, second.ToStatus)
	}
	if second.ActorID != "R1" {
		t.Errorf("actor = %s, expected R1", second.ActorID)
	}
}
