package workflow

import "context"

// Actor is the identity of the caller as reported by the identity
// collaborator: a user ID plus the role names attached to the session.
type Actor struct {
	ID    string
	Roles []string
}

// IsModerator is the single authorization predicate for moderator
// capability: Admin and Moderator roles are equivalent everywhere in the
// workflow.
func (a Actor) IsModerator() bool {
	for _, r := range a.Roles {
		if r == "Admin" || r == "Moderator" {
			return true
		}
	}
	return false
}

// Gateway is the public surface of the workflow. It translates actor
// identity into the ownerID / isModerator parameters the lifecycles expect
// and adds no business rules of its own.
type Gateway struct {
	svc *Service
}

// NewGateway returns a Gateway over svc.
func NewGateway(svc *Service) *Gateway {
	return &Gateway{svc: svc}
}

// ─── Offer operations ────────────────────────────────────────────────────────

func (g *Gateway) SubmitOffer(ctx context.Context, actor Actor, o *Offer) (*Offer, error) {
	return g.svc.SubmitOffer(ctx, actor.ID, o)
}

func (g *Gateway) ApproveOffer(ctx context.Context, actor Actor, offerID string) (*Offer, error) {
	return g.svc.ApproveOffer(ctx, actor.ID, actor.IsModerator(), offerID)
}

func (g *Gateway) RejectOffer(ctx context.Context, actor Actor, offerID string) (*Offer, error) {
	return g.svc.RejectOffer(ctx, actor.ID, actor.IsModerator(), offerID)
}

func (g *Gateway) EditOffer(ctx context.Context, actor Actor, o *Offer) (*Offer, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return g.svc.EditOffer(ctx, actor.ID, actor.IsModerator(), o)
}

func (g *Gateway) DeleteOffer(ctx context.Context, actor Actor, offerID string) error {
	if actor.ID == "" {
		return ErrAuthenticationRequired
	}
	return g.svc.DeleteOffer(ctx, actor.ID, actor.IsModerator(), offerID)
}

func (g *Gateway) ExtendOffer(ctx context.Context, actor Actor, offerID string, days int) (*Offer, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return g.svc.ExtendOffer(ctx, actor.ID, actor.IsModerator(), offerID, days)
}

func (g *Gateway) GetOffer(ctx context.Context, offerID string) (*Offer, error) {
	return g.svc.GetOffer(ctx, offerID)
}

func (g *Gateway) MyOffers(ctx context.Context, actor Actor) ([]Offer, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return g.svc.ListOffersByOwner(ctx, actor.ID)
}

// ─── Application operations ──────────────────────────────────────────────────

func (g *Gateway) ApplyForOffer(ctx context.Context, actor Actor, offerID string) (bool, error) {
	if actor.ID == "" {
		return false, ErrAuthenticationRequired
	}
	return g.svc.Apply(ctx, offerID, actor.ID)
}

func (g *Gateway) ChangeApplicationStatus(
	ctx context.Context,
	actor Actor,
	applicationID string,
	newStatus ApplicationStatus,
	employerPhone, rejectionReason *string,
) (*Application, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return g.svc.ChangeApplicationStatus(ctx, applicationID, newStatus, actor.ID, employerPhone, rejectionReason)
}

func (g *Gateway) HasApplied(ctx context.Context, actor Actor, offerID string) (bool, error) {
	if actor.ID == "" {
		return false, ErrAuthenticationRequired
	}
	return g.svc.HasApplied(ctx, offerID, actor.ID)
}

func (g *Gateway) MyApplications(ctx context.Context, actor Actor) ([]Application, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	return g.svc.ListApplicationsByApplicant(ctx, actor.ID)
}

// ApplicationsForOffer lists an offer's applications for its owner or a
// moderator.
func (g *Gateway) ApplicationsForOffer(ctx context.Context, actor Actor, offerID string) ([]Application, error) {
	if actor.ID == "" {
		return nil, ErrAuthenticationRequired
	}
	offer, err := g.svc.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.OwnerID != actor.ID && !actor.IsModerator() {
		return nil, ErrPermissionDenied
	}
	return g.svc.ListApplicationsForOffer(ctx, offerID)
}
