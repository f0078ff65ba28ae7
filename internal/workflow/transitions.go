// Package workflow implements the moderation workflow for job offers and
// the decision workflow for applications.
//
// Offer status graph:
//
//	PENDING_REVIEW ──► PUBLISHED ──► EXPIRED ──► PUBLISHED (extend)
//	      │
//	      └──────────► REJECTED
//
// Application status graph:
//
//	APPLIED ──► INVITED ◄──► REJECTED
//
// APPLIED is an initial state only — once a decision is made there is no
// way back, and a decision may only be revised after a 30-minute cooldown.
package workflow

import "fmt"

// OfferStatus values mirror the offer_status enum in PostgreSQL.
type OfferStatus string

const (
	OfferPendingReview OfferStatus = "PENDING_REVIEW"
	OfferPublished     OfferStatus = "PUBLISHED"
	OfferRejected      OfferStatus = "REJECTED"
	OfferExpired       OfferStatus = "EXPIRED"
)

// ParseOfferStatus converts a raw string to an OfferStatus, returning an
// error for unknown values.
func ParseOfferStatus(s string) (OfferStatus, error) {
	st := OfferStatus(s)
	switch st {
	case OfferPendingReview, OfferPublished, OfferRejected, OfferExpired:
		return st, nil
	}
	return "", fmt.Errorf("unknown offer status %q", s)
}

// DisplayName returns the human label for an offer status. Labels are
// resolved at the presentation boundary — lifecycle logic never branches
// on these strings.
func (s OfferStatus) DisplayName() string {
	switch s {
	case OfferPendingReview:
		return "Pending review"
	case OfferPublished:
		return "Published"
	case OfferRejected:
		return "Rejected"
	case OfferExpired:
		return "Expired"
	}
	return string(s)
}

// ApplicationStatus values mirror the application_status enum in PostgreSQL.
type ApplicationStatus string

const (
	ApplicationApplied  ApplicationStatus = "APPLIED"
	ApplicationInvited  ApplicationStatus = "INVITED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// ParseApplicationStatus converts a raw string to an ApplicationStatus,
// returning an error for unknown values.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case ApplicationApplied, ApplicationInvited, ApplicationRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// DisplayName returns the human label for an application status.
func (s ApplicationStatus) DisplayName() string {
	switch s {
	case ApplicationApplied:
		return "Applied"
	case ApplicationInvited:
		return "Invited to interview"
	case ApplicationRejected:
		return "Rejected"
	}
	return string(s)
}

// IsDecision returns true when status represents an employer decision.
// The cooldown applies to revising a decision, never to the first one.
func (s ApplicationStatus) IsDecision() bool {
	return s == ApplicationInvited || s == ApplicationRejected
}
