package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// decisionCooldown is the minimum interval between successive decisions on
// the same application. It lets the applicant's notification settle before
// the employer can flip the decision.
const decisionCooldown = 30 * time.Minute

// ─── Application lifecycle ───────────────────────────────────────────────────

// Apply creates an application for offerID by applicantID and notifies the
// offer owner. Returns false — not an error — when the applicant already
// applied, owns the offer, or the offer does not exist: "not applied" is an
// expected outcome for callers, not an exceptional one.
//
// The store insert is insert-if-absent, so two concurrent calls for the
// same (offer, applicant) pair leave exactly one row.
func (s *Service) Apply(ctx context.Context, offerID, applicantID string) (bool, error) {
	already, err := s.store.HasApplied(ctx, offerID, applicantID)
	if err != nil {
		return false, fmt.Errorf("apply: %w", err)
	}
	if already {
		return false, nil
	}

	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("apply: %w", err)
	}
	if offer.OwnerID == applicantID {
		return false, nil
	}

	app := &Application{
		OfferID:     offerID,
		ApplicantID: applicantID,
		Status:      ApplicationApplied,
		AppliedAt:   time.Now().UTC(),
	}
	created, err := s.store.CreateApplication(ctx, app)
	if err != nil {
		return false, fmt.Errorf("apply insert: %w", err)
	}
	if !created {
		return false, nil
	}

	s.notify(ctx, offer.OwnerID,
		fmt.Sprintf("You have a new application for: %s", offer.Title),
		fmt.Sprintf("/my-offers/details/%s", offer.ID))
	return true, nil
}

// ChangeApplicationStatus records an employer decision on an application.
// Only the offer's owner may decide. Revising an existing decision within
// decisionCooldown fails with *CooldownError carrying the remaining whole
// minutes. The status write is the source of truth: the applicant's
// notification is dispatched after the persist and is best-effort.
func (s *Service) ChangeApplicationStatus(
	ctx context.Context,
	applicationID string,
	newStatus ApplicationStatus,
	actorID string,
	employerPhone, rejectionReason *string,
) (*Application, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Offer == nil || app.Offer.OwnerID != actorID {
		return nil, ErrPermissionDenied
	}
	if !newStatus.IsDecision() {
		// APPLIED is an initial state only.
		return nil, ErrInvalidTransition
	}

	// The cooldown activates after the first decision: a fresh APPLIED
	// application has no decision timestamp to protect.
	if app.Status.IsDecision() && app.StatusLastUpdated != nil {
		elapsed := time.Since(*app.StatusLastUpdated)
		if elapsed < decisionCooldown {
			minutesLeft := int(decisionCooldown.Minutes()) - int(elapsed.Minutes())
			return nil, &CooldownError{MinutesLeft: minutesLeft}
		}
	}

	now := time.Now().UTC()
	app.Status = newStatus
	app.StatusLastUpdated = &now

	var message string
	switch newStatus {
	case ApplicationInvited:
		app.EmployerPhone = employerPhone
		app.RejectionReason = nil
		phone := ""
		if employerPhone != nil {
			phone = *employerPhone
		}
		message = fmt.Sprintf("Congratulations! You have been invited to interview for: %s. Phone: %s",
			app.Offer.Title, phone)
	case ApplicationRejected:
		app.EmployerPhone = nil
		app.RejectionReason = rejectionReason
		message = fmt.Sprintf("Unfortunately, your application for: %s was rejected.", app.Offer.Title)
		if rejectionReason != nil && *rejectionReason != "" {
			message += fmt.Sprintf(" Reason: %s", *rejectionReason)
		}
	}

	if err := s.store.UpdateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("changeApplicationStatus: %w", err)
	}

	s.notify(ctx, app.ApplicantID, message, "/my-applications")
	return app, nil
}

// ─── Application reads ───────────────────────────────────────────────────────

// GetApplication returns a single application with its related offer.
func (s *Service) GetApplication(ctx context.Context, applicationID string) (*Application, error) {
	return s.store.GetApplication(ctx, applicationID)
}

// HasApplied reports whether applicantID already applied for offerID.
func (s *Service) HasApplied(ctx context.Context, offerID, applicantID string) (bool, error) {
	return s.store.HasApplied(ctx, offerID, applicantID)
}

// ListApplicationsByApplicant returns all applications submitted by
// applicantID, newest first.
func (s *Service) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]Application, error) {
	return s.store.ListApplicationsByApplicant(ctx, applicantID)
}

// ListApplicationsForOffer returns all applications for an offer, newest
// first. The caller (Gateway) enforces that only the offer's owner or a
// moderator reaches this.
func (s *Service) ListApplicationsForOffer(ctx context.Context, offerID string) ([]Application, error) {
	return s.store.ListApplicationsForOffer(ctx, offerID)
}
