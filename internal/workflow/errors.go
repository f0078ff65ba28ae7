package workflow

import (
	"errors"
	"fmt"
)

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// Messages stay generic on purpose: permission and not-found failures must
// not leak whether the entity exists or who owns it.
var (
	// ErrNotFound is returned when an offer or application is missing.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when the actor lacks ownership or
	// moderator capability for the operation.
	ErrPermissionDenied = errors.New("not allowed")

	// ErrAuthenticationRequired is returned when an operation that needs a
	// signed-in actor is attempted without one.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrInvalidTransition is returned when the operation is not valid from
	// the entity's current status.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// CooldownError is returned when a decision on an application is revised
// within the cooldown window. MinutesLeft is the whole number of minutes
// until the decision may be changed, surfaced verbatim to the caller.
type CooldownError struct{ MinutesLeft int }

func (e *CooldownError) Error() string {
	return fmt.Sprintf("decision was made recently, try again in %d min", e.MinutesLeft)
}
