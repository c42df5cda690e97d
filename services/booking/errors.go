package booking

import "fmt"

// Error is a machine-readable booking error. Handlers map Code to an HTTP
// status; Message is safe to surface to the caller.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrSlotNotFound covers both a bogus slot id and a stale reference to a
	// slot whose (unbooked) parent window was deleted.
	ErrSlotNotFound = &Error{Code: "SlotNotFound", Message: "time slot not found"}
	// ErrSlotAlreadyBooked is the expected outcome for every loser of a
	// concurrent race on one slot. Not a bug; the UI explains it.
	ErrSlotAlreadyBooked = &Error{Code: "SlotAlreadyBooked", Message: "time slot is already booked"}
	// ErrNotFound is surfaced when the booking id is unknown.
	ErrNotFound = &Error{Code: "BookingNotFound", Message: "booking not found"}
)

// NewValidationError builds a 400-class error for a malformed request.
func NewValidationError(msg string) error {
	return &Error{Code: "Validation", Message: msg}
}

// NewTransitionError rejects an illegal administrative status transition.
func NewTransitionError(from, to string) error {
	return &Error{Code: "InvalidTransition", Message: fmt.Sprintf("cannot move booking from %s to %s", from, to)}
}
