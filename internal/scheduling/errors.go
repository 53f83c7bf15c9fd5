package scheduling

import (
	"errors"
	"fmt"

	"counsel-scheduling-api/internal/model"
)

// Every error below is a recoverable, user-facing failure. Persistence
// outages are wrapped with %w and stay outside this taxonomy.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDuration = errors.New("duration must be one of 15, 30, 45, 60 minutes")

	// ErrChainLocked means the caller tried to extend a follow-up that is
	// no longer the latest in its lead's chain.
	ErrChainLocked = errors.New("follow-up chain is locked, only the latest follow-up can schedule the next one")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return e.Field + " is required"
}

// SlotConflictError names the record that already holds the requested
// slot, with enough detail for the caller to pick another time.
type SlotConflictError struct {
	Kind         model.AppointmentKind `json:"kind"`
	Time         string                `json:"time"`         // "HH:mm" start of the conflicting record
	Counterparty string                `json:"counterparty"` // who the conflicting record is with
	Party        string                `json:"party,omitempty"` // whose calendar is blocked (two-party checks)
}

func (e *SlotConflictError) Error() string {
	msg := fmt.Sprintf("slot conflicts with a %s at %s with %s", e.Kind, e.Time, e.Counterparty)
	if e.Party != "" {
		msg = e.Party + ": " + msg
	}
	return msg
}

// StateError is an illegal lifecycle transition.
type StateError struct {
	Action string
	From   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s from state %q", e.Action, e.From)
}

// AuthorizationError means the actor is not the required party for the
// action, not that they are unauthenticated.
type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return "not allowed to " + e.Action
}
