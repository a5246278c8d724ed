package models

import "time"

// BusType represents the category of a bus
type BusType string

const (
	BusTypeACSeater     BusType = "AC_SEATER"
	BusTypeNonACSeater  BusType = "NONAC_SEATER"
	BusTypeACSleeper    BusType = "AC_SLEEPER"
	BusTypeNonACSleeper BusType = "NONAC_SLEEPER"
)

// Bus represents a physical vehicle with a fixed seat inventory.
// Owned by the catalog; the booking engine only reads it.
type Bus struct {
	ID           string  `json:"id" db:"id"`
	OperatorName string  `json:"operator_name" db:"operator_name"`
	BusNumber    string  `json:"bus_number" db:"bus_number"`
	BusType      BusType `json:"bus_type" db:"bus_type"`
	TotalSeats   int     `json:"total_seats" db:"total_seats"`
}

// SeatType represents the kind of a seat
type SeatType string

const (
	SeatTypeSeater  SeatType = "SEATER"
	SeatTypeSleeper SeatType = "SLEEPER"
)

// SeatDeck represents the deck a seat is on
type SeatDeck string

const (
	DeckLower SeatDeck = "LOWER"
	DeckUpper SeatDeck = "UPPER"
)

// Seat represents one physical seat of a bus. Its identity is stable
// across every trip of that bus.
type Seat struct {
	ID           string   `json:"id" db:"id"`
	BusID        string   `json:"bus_id" db:"bus_id"`
	SeatNumber   string   `json:"seat_number" db:"seat_number"`
	SeatType     SeatType `json:"seat_type" db:"seat_type"`
	Deck         SeatDeck `json:"deck" db:"deck"`
	RowNumber    int      `json:"row_number" db:"row_number"`
	ColNumber    int      `json:"col_number" db:"col_number"`
	FareOverride *float64 `json:"fare_override,omitempty" db:"fare_override"`
}

// Fare returns the fare for this seat given the trip's base fare.
func (s *Seat) Fare(baseFare float64) float64 {
	if s.FareOverride != nil {
		return *s.FareOverride
	}
	return baseFare
}

// Trip represents a scheduled run of a bus on a route. Immutable input
// for the booking engine.
type Trip struct {
	ID            string    `json:"id" db:"id"`
	BusID         string    `json:"bus_id" db:"bus_id"`
	RouteName     string    `json:"route_name" db:"route_name"`
	JourneyDate   time.Time `json:"journey_date" db:"journey_date"`
	DepartureTime string    `json:"departure_time" db:"departure_time"`
	ArrivalTime   string    `json:"arrival_time" db:"arrival_time"`
	BaseFare      float64   `json:"base_fare" db:"base_fare"`
	Active        bool      `json:"active" db:"active"`
}
