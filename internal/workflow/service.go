package workflow

import (
	"context"
	"log/slog"
	"time"
)

// ─── Collaborator contracts ──────────────────────────────────────────────────

// Store is the persistence collaborator. Each lifecycle operation performs
// one read-modify-write unit against it; the store guarantees per-row
// atomicity but not serializable isolation, so state-changing writes are
// re-guarded on status (see MarkOfferExpired and the idempotence guards in
// the lifecycle methods).
type Store interface {
	GetOffer(ctx context.Context, id string) (*Offer, error)
	CreateOffer(ctx context.Context, o *Offer) error
	UpdateOffer(ctx context.Context, o *Offer) error
	DeleteOffer(ctx context.Context, id string) error
	ListOffersByOwner(ctx context.Context, ownerID string) ([]Offer, error)

	// ListDueOffers returns PUBLISHED offers whose deadline is before now.
	ListDueOffers(ctx context.Context, now time.Time) ([]Offer, error)
	// MarkOfferExpired flips a single offer to EXPIRED, guarded on the
	// PUBLISHED precondition. Returns false when the guard did not match —
	// a no-op, not an error, so re-running a scan is always safe.
	MarkOfferExpired(ctx context.Context, id string, now time.Time) (bool, error)

	// GetApplication loads an application together with its related Offer.
	GetApplication(ctx context.Context, id string) (*Application, error)
	// CreateApplication inserts if no application exists for the
	// (offer, applicant) pair. Returns false without error on a duplicate.
	CreateApplication(ctx context.Context, a *Application) (bool, error)
	UpdateApplication(ctx context.Context, a *Application) error
	HasApplied(ctx context.Context, offerID, applicantID string) (bool, error)
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]Application, error)
	ListApplicationsForOffer(ctx context.Context, offerID string) ([]Application, error)
}

// AuditTrail is the append-only action log collaborator.
type AuditTrail interface {
	Append(ctx context.Context, actorID, actionType, entityID, entityType, description string, at time.Time) error
}

// Notifier is the notification collaborator. Fire-and-forget: the lifecycle
// only consumes the error for logging.
type Notifier interface {
	CreateNotification(ctx context.Context, userID, message, linkURL string) error
}

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the offer and application lifecycles. It is
// transport-agnostic: external callers go through Gateway, the expiry
// scheduler calls ExpireDueOffers directly.
type Service struct {
	store    Store
	audit    AuditTrail
	notifier Notifier
}

// NewService returns a configured Service.
func NewService(store Store, audit AuditTrail, notifier Notifier) *Service {
	return &Service{store: store, audit: audit, notifier: notifier}
}

const offerEntityType = "JobOffer"

// logOfferAudit appends an audit entry for an offer action. Audit writes
// happen after the state-changing write commits and are best-effort: a
// failure is logged, never propagated.
func (s *Service) logOfferAudit(ctx context.Context, actorID, actionType, offerID, description string) {
	if err := s.audit.Append(ctx, actorID, actionType, offerID, offerEntityType, description, time.Now().UTC()); err != nil {
		slog.Warn("audit append failed", "actionType", actionType, "offerId", offerID, "err", err)
	}
}

// notify dispatches a notification, logging and swallowing any failure.
// The state transition is the durable fact of record; a lost notification
// is an acceptable degradation.
func (s *Service) notify(ctx context.Context, userID, message, linkURL string) {
	if userID == "" {
		return
	}
	if err := s.notifier.CreateNotification(ctx, userID, message, linkURL); err != nil {
		slog.Warn("notification dispatch failed", "userId", userID, "err", err)
	}
}
