package models

import (
	"errors"
	"strings"
	"time"
)

// BookingStatus represents the status of a booking. The only legal
// transition is CONFIRMED -> CANCELLED; there is no path back and no
// intermediate state. Bookings are created CONFIRMED by the confirmation
// transaction.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// Booking represents a durable, irreversible sale of one or more seats on
// a trip. The PNR is generated exactly once at creation and never reused.
type Booking struct {
	ID                 string        `json:"id" db:"id"`
	PNR                string        `json:"pnr" db:"pnr"`
	UserID             string        `json:"user_id" db:"user_id"`
	TripID             string        `json:"trip_id" db:"trip_id"`
	Status             BookingStatus `json:"status" db:"status"`
	TotalFare          float64       `json:"total_fare" db:"total_fare"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
}

// CanBeCancelled checks if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusConfirmed
}

// BookingSeat is one purchased seat line of a booking. Rows are never
// deleted, cancellation included, so sale history is preserved.
type BookingSeat struct {
	ID        string  `json:"id" db:"id"`
	BookingID string  `json:"booking_id" db:"booking_id"`
	SeatID    string  `json:"seat_id" db:"seat_id"`
	Fare      float64 `json:"fare" db:"fare"`
}

// Passenger is the rider detail attached to one seat line of a booking.
type Passenger struct {
	ID        string `json:"id" db:"id"`
	BookingID string `json:"booking_id" db:"booking_id"`
	SeatID    string `json:"seat_id" db:"seat_id"`
	Name      string `json:"name" db:"name"`
	Age       int    `json:"age" db:"age"`
	Gender    string `json:"gender" db:"gender"`
}

// PassengerDetail carries the rider data submitted for one locked seat.
type PassengerDetail struct {
	SeatID string `json:"seat_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Age    int    `json:"age" binding:"required"`
	Gender string `json:"gender" binding:"required"`
}

// IsComplete reports whether every field required for a booking is present.
func (p *PassengerDetail) IsComplete() bool {
	return strings.TrimSpace(p.Name) != "" &&
		p.Age > 0 &&
		strings.TrimSpace(p.Gender) != ""
}

// ConfirmBookingRequest represents the request to convert the caller's
// seat locks into a confirmed booking.
type ConfirmBookingRequest struct {
	Passengers []PassengerDetail `json:"passengers" binding:"required"`
}

// Validate validates the confirm booking request
func (r *ConfirmBookingRequest) Validate() error {
	if len(r.Passengers) == 0 {
		return errors.New("at least one passenger is required")
	}

	seen := make(map[string]struct{}, len(r.Passengers))
	for _, p := range r.Passengers {
		if p.SeatID == "" {
			return errors.New("every passenger must reference a seat")
		}
		if _, dup := seen[p.SeatID]; dup {
			return errors.New("duplicate passenger for the same seat")
		}
		seen[p.SeatID] = struct{}{}
	}

	return nil
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// BookingDetail is a booking together with its seat lines and passengers.
type BookingDetail struct {
	Booking    Booking       `json:"booking"`
	Seats      []BookingSeat `json:"seats"`
	Passengers []Passenger   `json:"passengers"`
}
