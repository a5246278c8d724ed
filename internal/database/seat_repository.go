package database

import (
	"fmt"

	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SeatRepository handles read access to the seats table. Seat identity is
// stable across every trip of a bus; the booking engine never mutates seats.
type SeatRepository struct {
	db *sqlx.DB
}

// NewSeatRepository creates a new SeatRepository
func NewSeatRepository(db *sqlx.DB) *SeatRepository {
	return &SeatRepository{db: db}
}

// ListByBus retrieves all seats of a bus in layout order.
func (r *SeatRepository) ListByBus(busID string) ([]models.Seat, error) {
	query := `
		SELECT id, bus_id, seat_number, seat_type, deck,
			   row_number, col_number, fare_override
		FROM seats
		WHERE bus_id = $1
		ORDER BY deck, row_number, col_number
	`

	var seats []models.Seat
	if err := r.db.Select(&seats, query, busID); err != nil {
		return nil, fmt.Errorf("failed to fetch seats: %w", err)
	}

	return seats, nil
}

// GetByIDsForBus retrieves the requested seats, restricted to the given
// bus. A missing row means the caller referenced a seat that does not
// exist on the trip's bus; callers detect that by comparing lengths.
func (r *SeatRepository) GetByIDsForBus(busID string, seatIDs []string) ([]models.Seat, error) {
	if len(seatIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, bus_id, seat_number, seat_type, deck,
			   row_number, col_number, fare_override
		FROM seats
		WHERE bus_id = $1 AND id = ANY($2)
	`

	var seats []models.Seat
	if err := r.db.Select(&seats, query, busID, pq.Array(seatIDs)); err != nil {
		return nil, fmt.Errorf("failed to fetch seats: %w", err)
	}

	return seats, nil
}
