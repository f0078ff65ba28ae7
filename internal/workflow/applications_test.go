package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobsearch/board-service/internal/workflow"
)

func str(s string) *string { return &s }

func minutesAgo(m int) *time.Time {
	t := time.Now().UTC().Add(-time.Duration(m) * time.Minute)
	return &t
}

// ── Apply ──────────────────────────────────────────────────────────────────

func TestApply_CreatesApplicationAndNotifiesOwner(t *testing.T) {
	svc, st, _, no := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))

	applied, err := svc.Apply(context.Background(), offer.ID, "candidate-1")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if !applied {
		t.Fatal("Apply = false, want true")
	}
	if len(st.apps) != 1 {
		t.Fatalf("applications = %d, want 1", len(st.apps))
	}
	for _, a := range st.apps {
		if a.Status != workflow.ApplicationApplied {
			t.Errorf("status = %s, want APPLIED", a.Status)
		}
		if a.AppliedAt.IsZero() {
			t.Error("appliedAt should be set")
		}
	}
	if len(no.sent) != 1 || no.sent[0].userID != "owner-1" {
		t.Fatalf("notifications = %+v, want one to owner-1", no.sent)
	}
}

// A second apply for the same pair reports failure and leaves exactly one row.
func TestApply_DuplicateIsRejectedWithoutError(t *testing.T) {
	svc, st, _, no := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))

	if applied, _ := svc.Apply(context.Background(), offer.ID, "candidate-1"); !applied {
		t.Fatal("first apply should succeed")
	}
	applied, err := svc.Apply(context.Background(), offer.ID, "candidate-1")
	if err != nil {
		t.Fatalf("second apply returned error: %v", err)
	}
	if applied {
		t.Error("second apply = true, want false")
	}
	if len(st.apps) != 1 {
		t.Errorf("applications = %d, want exactly 1", len(st.apps))
	}
	if len(no.sent) != 1 {
		t.Errorf("notifications = %d, want 1 (none for the duplicate)", len(no.sent))
	}
}

func TestApply_OwnerCannotApplyToOwnOffer(t *testing.T) {
	svc, st, _, _ := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))

	applied, err := svc.Apply(context.Background(), offer.ID, "owner-1")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if applied || len(st.apps) != 0 {
		t.Error("offer owner must not be able to apply to their own offer")
	}
}

func TestApply_MissingOfferReportsNotApplied(t *testing.T) {
	svc, _, _, _ := newTestService()

	applied, err := svc.Apply(context.Background(), "no-such-offer", "candidate-1")
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if applied {
		t.Error("Apply = true for a missing offer, want false")
	}
}

// ── ChangeApplicationStatus: permissions and targets ───────────────────────

func TestChangeStatus_MissingApplication(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.ChangeApplicationStatus(context.Background(), "no-such-app",
		workflow.ApplicationInvited, "owner-1", nil, nil)
	if !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestChangeStatus_OnlyOfferOwnerMayDecide(t *testing.T) {
	svc, st, _, _ := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationApplied, nil)

	for _, actor := range []string{"candidate-1", "stranger", ""} {
		_, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
			workflow.ApplicationInvited, actor, nil, nil)
		if !errors.Is(err, workflow.ErrPermissionDenied) {
			t.Errorf("actor %q: err = %v, want ErrPermissionDenied", actor, err)
		}
	}
}

// There is no transition back to APPLIED once a decision exists — and no
// way to "re-apply" an application explicitly either.
func TestChangeStatus_BackToAppliedIsInvalid(t *testing.T) {
	svc, st, _, _ := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationInvited, minutesAgo(60))

	_, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationApplied, "owner-1", nil, nil)
	if !errors.Is(err, workflow.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

// ── ChangeApplicationStatus: cooldown ──────────────────────────────────────

// The first decision on a fresh application never triggers the cooldown —
// there is no prior decision timestamp to protect.
func TestChangeStatus_FirstDecisionHasNoCooldown(t *testing.T) {
	svc, st, _, _ := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationApplied, nil)

	got, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationInvited, "owner-1", str("123456789"), nil)
	if err != nil {
		t.Fatalf("ChangeApplicationStatus returned error: %v", err)
	}
	if got.Status != workflow.ApplicationInvited {
		t.Errorf("status = %s, want INVITED", got.Status)
	}
	if got.StatusLastUpdated == nil {
		t.Error("statusLastUpdated should be set by the first decision")
	}
}

// Invited 5 minutes ago, then an immediate Reject: CooldownActive with 25
// whole minutes remaining.
func TestChangeStatus_CooldownActiveReportsRemainingMinutes(t *testing.T) {
	svc, st, _, no := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationInvited, minutesAgo(5))

	_, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationRejected, "owner-1", nil, str("changed our mind"))

	var ce *workflow.CooldownError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CooldownError", err)
	}
	if ce.MinutesLeft != 25 {
		t.Errorf("minutesLeft = %d, want 25", ce.MinutesLeft)
	}
	if st.apps[app.ID].Status != workflow.ApplicationInvited {
		t.Error("status must be unchanged while the cooldown is active")
	}
	if len(no.sent) != 0 {
		t.Error("a blocked decision must not notify the applicant")
	}
}

func TestChangeStatus_CooldownBoundary(t *testing.T) {
	cases := []struct {
		name       string
		minutesAgo int
		wantLeft   int // 0 means the change is allowed
	}{
		{"one minute in", 1, 29},
		{"29 minutes in", 29, 1},
		{"31 minutes in", 31, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc, st, _, _ := newTestService()
			offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
			app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationInvited, minutesAgo(c.minutesAgo))

			_, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
				workflow.ApplicationRejected, "owner-1", nil, nil)

			if c.wantLeft == 0 {
				if err != nil {
					t.Fatalf("expected change to be allowed, got %v", err)
				}
				return
			}
			var ce *workflow.CooldownError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *CooldownError", err)
			}
			if ce.MinutesLeft != c.wantLeft {
				t.Errorf("minutesLeft = %d, want %d", ce.MinutesLeft, c.wantLeft)
			}
		})
	}
}

// ── ChangeApplicationStatus: decision side effects ─────────────────────────

func TestChangeStatus_InvitedSetsPhoneAndClearsReason(t *testing.T) {
	svc, st, _, no := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationRejected, minutesAgo(45))
	app.RejectionReason = str("not enough experience")

	got, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationInvited, "owner-1", str("123456789"), nil)
	if err != nil {
		t.Fatalf("ChangeApplicationStatus returned error: %v", err)
	}
	if got.EmployerPhone == nil || *got.EmployerPhone != "123456789" {
		t.Errorf("employerPhone = %v, want 123456789", got.EmployerPhone)
	}
	if got.RejectionReason != nil {
		t.Error("rejectionReason must be cleared on invite")
	}
	if len(no.sent) != 1 || no.sent[0].userID != "candidate-1" {
		t.Fatalf("notifications = %+v, want one to candidate-1", no.sent)
	}
	if !strings.Contains(no.sent[0].message, "123456789") {
		t.Errorf("invite notification %q must include the phone number", no.sent[0].message)
	}
}

func TestChangeStatus_RejectedSetsReasonAndClearsPhone(t *testing.T) {
	svc, st, _, no := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationInvited, minutesAgo(45))
	app.EmployerPhone = str("123456789")

	got, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationRejected, "owner-1", nil, str("position filled"))
	if err != nil {
		t.Fatalf("ChangeApplicationStatus returned error: %v", err)
	}
	if got.EmployerPhone != nil {
		t.Error("employerPhone must be cleared on reject")
	}
	if got.RejectionReason == nil || *got.RejectionReason != "position filled" {
		t.Errorf("rejectionReason = %v, want position filled", got.RejectionReason)
	}
	if !strings.Contains(no.sent[0].message, "position filled") {
		t.Errorf("reject notification %q must include the reason", no.sent[0].message)
	}
}

func TestChangeStatus_RejectedWithoutReasonOmitsIt(t *testing.T) {
	svc, st, _, no := newTestService()
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationApplied, nil)

	if _, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationRejected, "owner-1", nil, nil); err != nil {
		t.Fatalf("ChangeApplicationStatus returned error: %v", err)
	}
	if strings.Contains(no.sent[0].message, "Reason:") {
		t.Errorf("notification %q must not mention a reason when none was given", no.sent[0].message)
	}
}

// The transition is the source of truth: a failing dispatcher must not
// roll back or fail the status change.
func TestChangeStatus_NotificationFailureDoesNotRollBack(t *testing.T) {
	svc, st, _, no := newTestService()
	no.fail = true
	offer := seedOffer(st, "owner-1", workflow.OfferPublished, time.Now().AddDate(0, 0, 7))
	app := seedApplication(st, offer.ID, "candidate-1", workflow.ApplicationApplied, nil)

	got, err := svc.ChangeApplicationStatus(context.Background(), app.ID,
		workflow.ApplicationInvited, "owner-1", str("123456789"), nil)
	if err != nil {
		t.Fatalf("ChangeApplicationStatus returned error: %v", err)
	}
	if got.Status != workflow.ApplicationInvited {
		t.Errorf("status = %s, want INVITED", got.Status)
	}
	if st.apps[app.ID].Status != workflow.ApplicationInvited {
		t.Error("status change must be persisted despite the dispatch failure")
	}
}
