package services

import (
	"errors"
	"fmt"
	"strings"
)

// Typed outcomes of the booking engine. Every rejection a caller can act
// on is one of these; nothing is logged-and-ignored.
var (
	// ErrTripNotFound is returned when the trip reference is invalid or
	// the trip is not open for booking.
	ErrTripNotFound = errors.New("trip not found")

	// ErrSeatNotFound is returned when a seat reference does not belong
	// to the trip's bus.
	ErrSeatNotFound = errors.New("seat not found")

	// ErrBookingNotFound is returned when the booking reference is invalid.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTooManySeats is returned when a selection exceeds the configured
	// per-booking seat cap.
	ErrTooManySeats = errors.New("too many seats in one selection")

	// ErrLockExpired is returned when the caller's seat locks have lapsed
	// before confirmation; the caller must restart seat selection.
	ErrLockExpired = errors.New("seat lock expired")

	// ErrSeatAlreadySold is returned when a locked seat turns out to be
	// sold at confirmation time; the caller's locks are released and the
	// caller must restart seat selection.
	ErrSeatAlreadySold = errors.New("seat already sold")

	// ErrIncompletePassengerData is returned when any locked seat lacks a
	// complete passenger record; no partial booking is ever created.
	ErrIncompletePassengerData = errors.New("incomplete passenger data")

	// ErrNotOwner is returned when a caller operates on a booking owned
	// by someone else.
	ErrNotOwner = errors.New("not the booking owner")

	// ErrInvalidStateTransition is returned when cancelling a booking
	// that is not CONFIRMED. Double cancellation is a caller bug worth
	// surfacing, not a success.
	ErrInvalidStateTransition = errors.New("invalid booking state transition")
)

// SeatConflictError reports which seats could not be locked because they
// are held by another buyer or already sold. Recoverable: the caller
// should re-read availability and select again.
type SeatConflictError struct {
	SeatIDs []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatIDs, ", "))
}
