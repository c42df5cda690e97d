package availability

import "fmt"

// Error is a machine-readable availability error. Handlers map Code to an
// HTTP status; Message is safe to surface to the caller.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrHasBookedSlots rejects mutation or deletion of a window that already
	// has at least one booked slot.
	ErrHasBookedSlots = &Error{Code: "HasBookedSlots", Message: "availability has booked slots and cannot be modified"}
	// ErrNotFound is surfaced when the availability id is unknown.
	ErrNotFound = &Error{Code: "AvailabilityNotFound", Message: "availability not found"}
)

// NewValidationError builds a 400-class error for a malformed request.
func NewValidationError(msg string) error {
	return &Error{Code: "Validation", Message: msg}
}
