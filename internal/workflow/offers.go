package workflow

import (
	"context"
	"fmt"
	"time"
)

// ─── Offer lifecycle ─────────────────────────────────────────────────────────

// SubmitOffer creates a new offer on behalf of actorID. The offer always
// enters moderation: any status in the payload is overridden with
// PENDING_REVIEW.
func (s *Service) SubmitOffer(ctx context.Context, actorID string, o *Offer) (*Offer, error) {
	if actorID == "" {
		return nil, ErrAuthenticationRequired
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	o.Status = OfferPendingReview
	o.OwnerID = actorID
	o.PostedAt = time.Now().UTC()

	if err := s.store.CreateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("submitOffer: %w", err)
	}

	s.logOfferAudit(ctx, actorID, "OfferCreated", o.ID,
		fmt.Sprintf("Offer %q created and awaiting review.", o.Title))
	return o, nil
}

// ApproveOffer publishes a pending offer. Requires moderator capability.
//
// Approving an offer that is no longer in PENDING_REVIEW is a deliberate
// silent no-op: it guards against double-click races and makes re-applying
// the transition safe when two moderators act concurrently.
func (s *Service) ApproveOffer(ctx context.Context, actorID string, isModerator bool, offerID string) (*Offer, error) {
	if !isModerator {
		return nil, ErrPermissionDenied
	}

	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != OfferPendingReview {
		return offer, nil
	}

	offer.Status = OfferPublished
	offer.ModerationComment = nil
	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("approveOffer: %w", err)
	}

	s.logOfferAudit(ctx, actorID, "OfferApproved", offer.ID, "Offer approved and published.")
	s.notify(ctx, offer.OwnerID,
		fmt.Sprintf("Your offer %q has been approved and is now public!", offer.Title),
		fmt.Sprintf("/my-offers/details/%s", offer.ID))
	return offer, nil
}

// RejectOffer declines a pending offer. Requires moderator capability.
// Same idempotence guard as ApproveOffer.
func (s *Service) RejectOffer(ctx context.Context, actorID string, isModerator bool, offerID string) (*Offer, error) {
	if !isModerator {
		return nil, ErrPermissionDenied
	}

	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != OfferPendingReview {
		return offer, nil
	}

	offer.Status = OfferRejected
	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("rejectOffer: %w", err)
	}

	s.logOfferAudit(ctx, actorID, "OfferRejected", offer.ID, "Offer rejected.")
	s.notify(ctx, offer.OwnerID,
		fmt.Sprintf("Your offer %q has been rejected by moderation.", offer.Title),
		fmt.Sprintf("/my-offers/edit/%s", offer.ID))
	return offer, nil
}

// EditOffer applies a field update by the owner or a moderator.
//
// A moderator's edit is recorded verbatim, including status changes. A
// non-moderator owner cannot change status through the payload — the
// original status is restored — and editing an offer that already left
// moderation sends it back to PENDING_REVIEW: content changed, so it must
// be reviewed again.
func (s *Service) EditOffer(ctx context.Context, actorID string, isModerator bool, o *Offer) (*Offer, error) {
	original, err := s.store.GetOffer(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if original.OwnerID != actorID && !isModerator {
		return nil, ErrPermissionDenied
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	o.OwnerID = original.OwnerID
	o.PostedAt = original.PostedAt

	changes := "Offer edited."
	if isModerator {
		if original.Status != o.Status {
			changes = fmt.Sprintf("Status changed from %q to %q.",
				original.Status.DisplayName(), o.Status.DisplayName())
			if o.ModerationComment != nil && *o.ModerationComment != "" {
				changes += fmt.Sprintf(" Comment: %s", *o.ModerationComment)
			}
		}
	} else {
		o.Status = original.Status
		if original.Status != OfferPendingReview {
			o.Status = OfferPendingReview
			changes = "Offer updated by the owner and returned for review."
		}
	}

	if err := s.store.UpdateOffer(ctx, o); err != nil {
		return nil, fmt.Errorf("editOffer: %w", err)
	}

	s.logOfferAudit(ctx, actorID, "OfferEdit", o.ID, changes)
	return o, nil
}

// DeleteOffer removes an offer permanently. Owner or moderator only.
// Removal of the offer's applications cascades in the store.
func (s *Service) DeleteOffer(ctx context.Context, actorID string, isModerator bool, offerID string) error {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.OwnerID != actorID && !isModerator {
		return ErrPermissionDenied
	}

	if err := s.store.DeleteOffer(ctx, offerID); err != nil {
		return fmt.Errorf("deleteOffer: %w", err)
	}

	s.logOfferAudit(ctx, actorID, "OfferDelete", offerID,
		fmt.Sprintf("Offer %q deleted.", offer.Title))
	return nil
}

// ExtendOffer revives an expired offer for another daysToAdd days.
// Owner or moderator only; valid only from EXPIRED.
func (s *Service) ExtendOffer(ctx context.Context, actorID string, isModerator bool, offerID string, daysToAdd int) (*Offer, error) {
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.OwnerID != actorID && !isModerator {
		return nil, ErrPermissionDenied
	}
	if offer.Status != OfferExpired {
		return nil, ErrInvalidTransition
	}
	if daysToAdd < 1 {
		return nil, &ValidationError{Msg: "extension must be at least one day"}
	}

	now := time.Now().UTC()
	offer.Status = OfferPublished
	offer.PostedAt = now
	offer.Deadline = now.AddDate(0, 0, daysToAdd)

	if err := s.store.UpdateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("extendOffer: %w", err)
	}

	s.logOfferAudit(ctx, actorID, "OfferExtended", offer.ID,
		fmt.Sprintf("Offer extended by %d days.", daysToAdd))
	return offer, nil
}

// ExpireDueOffers marks every PUBLISHED offer with a past deadline as
// EXPIRED and returns how many were expired. Called by the scheduler, never
// by a user request, so no notifications are sent.
//
// Each offer is an independent, status-guarded update: an offer a moderator
// rejected between the scan and the write is simply skipped, and a
// half-finished run is resumed by the next tick.
func (s *Service) ExpireDueOffers(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	due, err := s.store.ListDueOffers(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("expireDueOffers list: %w", err)
	}

	expired := 0
	for _, offer := range due {
		ok, err := s.store.MarkOfferExpired(ctx, offer.ID, now)
		if err != nil {
			return expired, fmt.Errorf("expireDueOffers mark %s: %w", offer.ID, err)
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

// ─── Offer reads ─────────────────────────────────────────────────────────────

// GetOffer returns a single offer by ID.
func (s *Service) GetOffer(ctx context.Context, offerID string) (*Offer, error) {
	return s.store.GetOffer(ctx, offerID)
}

// ListOffersByOwner returns all offers created by ownerID, newest first.
func (s *Service) ListOffersByOwner(ctx context.Context, ownerID string) ([]Offer, error) {
	return s.store.ListOffersByOwner(ctx, ownerID)
}
