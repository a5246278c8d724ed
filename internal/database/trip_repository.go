package database

import (
	"database/sql"
	"fmt"

	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/jmoiron/sqlx"
)

// TripRepository handles read access to the trips table. Trips are owned
// by the catalog; the booking engine never mutates them.
type TripRepository struct {
	db *sqlx.DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID retrieves a trip by ID. Returns (nil, nil) when no trip exists.
func (r *TripRepository) GetByID(tripID string) (*models.Trip, error) {
	query := `
		SELECT id, bus_id, route_name, journey_date, departure_time,
			   arrival_time, base_fare, active
		FROM trips
		WHERE id = $1
	`

	var trip models.Trip
	err := r.db.Get(&trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip: %w", err)
	}

	return &trip, nil
}

// GetActiveByID retrieves a trip that is open for booking. Inactive trips
// are treated as absent.
func (r *TripRepository) GetActiveByID(tripID string) (*models.Trip, error) {
	query := `
		SELECT id, bus_id, route_name, journey_date, departure_time,
			   arrival_time, base_fare, active
		FROM trips
		WHERE id = $1 AND active = TRUE
	`

	var trip models.Trip
	err := r.db.Get(&trip, query, tripID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip: %w", err)
	}

	return &trip, nil
}
