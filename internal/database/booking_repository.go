package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BookingRepository handles database operations for bookings, their seat
// lines and passengers. Bookings are created only by the confirmation
// transaction and mutated only by cancellation.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BeginTx starts a new transaction
func (r *BookingRepository) BeginTx() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// ============================================================================
// PNR GENERATION
// ============================================================================

// GeneratePNRTx generates a globally unique 12-character PNR within the
// caller's transaction. Format: first 12 hex characters of a fresh UUID,
// uppercased, e.g. 1A2B3C4D5E6F. On the rare collision it regenerates up
// to maxAttempts times before failing the whole confirmation.
func (r *BookingRepository) GeneratePNRTx(tx *sqlx.Tx, maxAttempts int) (string, error) {
	for attempts := 0; attempts < maxAttempts; attempts++ {
		raw := strings.ReplaceAll(uuid.New().String(), "-", "")
		pnr := strings.ToUpper(raw[:12])

		var count int
		err := tx.Get(&count, `SELECT COUNT(*) FROM bookings WHERE pnr = $1`, pnr)
		if err != nil {
			return "", fmt.Errorf("failed to check PNR uniqueness: %w", err)
		}

		if count == 0 {
			return pnr, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique PNR after %d attempts", maxAttempts)
}

// ============================================================================
// CONFIRMATION TRANSACTION SUPPORT
// ============================================================================

// ConfirmedSeatIDsTx returns the subset of seatIDs already sold through a
// CONFIRMED booking on the trip, taking row-level exclusive locks on the
// matching seat lines. This is the second lock of the confirmation
// transaction's fixed ordering.
func (r *BookingRepository) ConfirmedSeatIDsTx(tx *sqlx.Tx, tripID string, seatIDs []string) ([]string, error) {
	query := `
		SELECT bs.seat_id
		FROM booking_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE b.trip_id = $1
		  AND b.status = 'CONFIRMED'
		  AND bs.seat_id = ANY($2)
		FOR UPDATE OF bs
	`

	var sold []string
	err := tx.Select(&sold, query, tripID, pq.Array(seatIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to check sold seats: %w", err)
	}

	return sold, nil
}

// CreateTx inserts a booking within the caller's transaction.
func (r *BookingRepository) CreateTx(tx *sqlx.Tx, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	query := `
		INSERT INTO bookings (id, pnr, user_id, trip_id, status, total_fare, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.Exec(query,
		booking.ID, booking.PNR, booking.UserID, booking.TripID,
		booking.Status, booking.TotalFare, booking.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// CreateSeatsTx inserts one seat line per purchased seat within the
// caller's transaction.
func (r *BookingRepository) CreateSeatsTx(tx *sqlx.Tx, seats []models.BookingSeat) error {
	query := `
		INSERT INTO booking_seats (id, booking_id, seat_id, fare)
		VALUES ($1, $2, $3, $4)
	`

	for i := range seats {
		if seats[i].ID == "" {
			seats[i].ID = uuid.New().String()
		}
		if _, err := tx.Exec(query, seats[i].ID, seats[i].BookingID, seats[i].SeatID, seats[i].Fare); err != nil {
			if IsUniqueViolation(err) {
				return err
			}
			return fmt.Errorf("failed to create booking seat: %w", err)
		}
	}

	return nil
}

// CreatePassengersTx inserts one passenger per purchased seat within the
// caller's transaction.
func (r *BookingRepository) CreatePassengersTx(tx *sqlx.Tx, passengers []models.Passenger) error {
	query := `
		INSERT INTO passengers (id, booking_id, seat_id, name, age, gender)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i := range passengers {
		if passengers[i].ID == "" {
			passengers[i].ID = uuid.New().String()
		}
		p := passengers[i]
		if _, err := tx.Exec(query, p.ID, p.BookingID, p.SeatID, p.Name, p.Age, p.Gender); err != nil {
			return fmt.Errorf("failed to create passenger: %w", err)
		}
	}

	return nil
}

// ============================================================================
// CANCELLATION TRANSACTION SUPPORT
// ============================================================================

// GetByIDForUpdateTx retrieves a booking with a row-level exclusive lock
// held, so a concurrent cancel serializes behind it. Returns (nil, nil)
// when no booking exists.
func (r *BookingRepository) GetByIDForUpdateTx(tx *sqlx.Tx, bookingID string) (*models.Booking, error) {
	query := `
		SELECT id, pnr, user_id, trip_id, status, total_fare,
			   created_at, cancelled_at, cancellation_reason
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`

	var booking models.Booking
	err := tx.Get(&booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return &booking, nil
}

// MarkCancelledTx transitions a booking to CANCELLED within the caller's
// transaction. Seat lines and passengers are retained for history.
func (r *BookingRepository) MarkCancelledTx(tx *sqlx.Tx, bookingID string, reason *string, now time.Time) error {
	query := `
		UPDATE bookings
		SET status = 'CANCELLED', cancelled_at = $2, cancellation_reason = $3
		WHERE id = $1
	`

	result, err := tx.Exec(query, bookingID, now, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// ============================================================================
// READ PATHS
// ============================================================================

// ConfirmedSeatIDs returns the seat ids sold through CONFIRMED bookings on
// a trip. Snapshot read for the availability index.
func (r *BookingRepository) ConfirmedSeatIDs(tripID string) ([]string, error) {
	query := `
		SELECT bs.seat_id
		FROM booking_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		WHERE b.trip_id = $1 AND b.status = 'CONFIRMED'
	`

	var seatIDs []string
	if err := r.db.Select(&seatIDs, query, tripID); err != nil {
		return nil, fmt.Errorf("failed to fetch sold seat ids: %w", err)
	}

	return seatIDs, nil
}

// GetByID retrieves a booking by ID. Returns (nil, nil) when no booking
// exists.
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `
		SELECT id, pnr, user_id, trip_id, status, total_fare,
			   created_at, cancelled_at, cancellation_reason
		FROM bookings
		WHERE id = $1
	`

	var booking models.Booking
	err := r.db.Get(&booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return &booking, nil
}

// GetSeats retrieves the seat lines of a booking.
func (r *BookingRepository) GetSeats(bookingID string) ([]models.BookingSeat, error) {
	query := `
		SELECT id, booking_id, seat_id, fare
		FROM booking_seats
		WHERE booking_id = $1
		ORDER BY seat_id
	`

	var seats []models.BookingSeat
	if err := r.db.Select(&seats, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to fetch booking seats: %w", err)
	}

	return seats, nil
}

// GetPassengers retrieves the passengers of a booking.
func (r *BookingRepository) GetPassengers(bookingID string) ([]models.Passenger, error) {
	query := `
		SELECT id, booking_id, seat_id, name, age, gender
		FROM passengers
		WHERE booking_id = $1
		ORDER BY seat_id
	`

	var passengers []models.Passenger
	if err := r.db.Select(&passengers, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to fetch passengers: %w", err)
	}

	return passengers, nil
}

// ListByUser retrieves all bookings of a user, newest first.
func (r *BookingRepository) ListByUser(userID string) ([]models.Booking, error) {
	query := `
		SELECT id, pnr, user_id, trip_id, status, total_fare,
			   created_at, cancelled_at, cancellation_reason
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return bookings, nil
}
