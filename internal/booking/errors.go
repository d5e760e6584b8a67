package booking

import (
	"errors"
	"fmt"
)

// Error is a rejection the caller can act on.  Code is stable and safe to
// expose to clients; Message is a human readable hint.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

// Rejections returned by the admission service.  Wrapped errors keep
// their identity, so match them with errors.Is.
var (
	ErrNotFound        = &Error{Code: "not_found", Message: "court or venue does not exist"}
	ErrOutOfHours      = &Error{Code: "out_of_hours", Message: "requested time is outside the court's operating hours"}
	ErrForbidden       = &Error{Code: "forbidden", Message: "you can only book on your own behalf"}
	ErrSlotUnavailable = &Error{Code: "slot_unavailable", Message: "this time is no longer available, please pick another slot"}
	ErrInvalidRange    = &Error{Code: "invalid_range", Message: "start and end must be HH:MM with start before end, date must be YYYY-MM-DD"}
	ErrNotCancellable  = &Error{Code: "not_cancellable", Message: "only confirmed reservations can be cancelled"}
	ErrUnavailable     = &Error{Code: "unavailable", Message: "booking service is temporarily unavailable, refresh availability and retry"}
)

// CodeOf returns the rejection code carried by err, or "internal" when err
// is not a booking rejection.
func CodeOf(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Code
	}
	return "internal"
}

// unavailable wraps an infrastructure failure so it is never mistaken for
// a booking conflict.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
