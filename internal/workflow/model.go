package workflow

import "time"

// Offer is a job posting with a moderation-gated publication lifecycle.
type Offer struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Company           string      `json:"company"`
	Location          string      `json:"location"`
	Requirements      string      `json:"requirements"`
	SalaryMin         *float64    `json:"salaryMin"`
	SalaryMax         *float64    `json:"salaryMax"`
	Status            OfferStatus `json:"status"`
	ModerationComment *string     `json:"moderationComment"`
	OwnerID           string      `json:"ownerId"`
	PostedAt          time.Time   `json:"postedAt"`
	Deadline          time.Time   `json:"deadline"`
}

// Validate checks the salary invariant. Called before every persist so an
// offer with min > max never reaches the store.
func (o *Offer) Validate() error {
	if o.SalaryMin != nil && o.SalaryMax != nil && *o.SalaryMin > *o.SalaryMax {
		return &ValidationError{Msg: "minimum salary cannot exceed maximum salary"}
	}
	return nil
}

// Application is a user's request to be considered for an Offer.
// At most one application exists per (offer, applicant) pair.
type Application struct {
	ID                string            `json:"id"`
	OfferID           string            `json:"offerId"`
	ApplicantID       string            `json:"applicantId"`
	Status            ApplicationStatus `json:"status"`
	AppliedAt         time.Time         `json:"appliedAt"`
	StatusLastUpdated *time.Time        `json:"statusLastUpdated"`
	EmployerPhone     *string           `json:"employerPhone"`
	RejectionReason   *string           `json:"rejectionReason"`

	// Offer is the related offer, loaded by the store for reads used in
	// permission checks and notification messages.
	Offer *Offer `json:"offer,omitempty"`
}

// AuditEntry is an immutable record of an action taken against an offer or
// application. Never mutated or deleted once written.
type AuditEntry struct {
	ID          string    `json:"id"`
	ActorID     string    `json:"actorId"`
	ActionType  string    `json:"actionType"`
	EntityID    string    `json:"entityId"`
	EntityType  string    `json:"entityType"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
