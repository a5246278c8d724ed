package database

import (
	"fmt"
	"time"

	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SeatLockRepository handles seat_locks database operations. Locks are the
// engine's mutual-exclusion primitive; every method that evaluates expiry
// takes the current time as a parameter so callers control the clock.
//
// The Tx variants participate in a caller-owned transaction. The lock
// manager and the booking coordinator are the only writers of this table.
type SeatLockRepository struct {
	db *sqlx.DB
}

// NewSeatLockRepository creates a new SeatLockRepository
func NewSeatLockRepository(db *sqlx.DB) *SeatLockRepository {
	return &SeatLockRepository{db: db}
}

// BeginTx starts a new transaction
func (r *SeatLockRepository) BeginTx() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// DeleteExpiredTx lazily garbage-collects locks for a trip whose deadline
// has passed. Must run before conflict evaluation so a lock that expired a
// moment ago does not block a new acquirer.
func (r *SeatLockRepository) DeleteExpiredTx(tx *sqlx.Tx, tripID string, now time.Time) error {
	_, err := tx.Exec(
		`DELETE FROM seat_locks WHERE trip_id = $1 AND expires_at <= $2`,
		tripID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expired seat locks: %w", err)
	}
	return nil
}

// ConflictingSeatIDsTx returns the subset of seatIDs currently held by a
// different user through an unexpired lock, taking row-level exclusive
// locks on those rows.
func (r *SeatLockRepository) ConflictingSeatIDsTx(tx *sqlx.Tx, tripID string, seatIDs []string, userID string, now time.Time) ([]string, error) {
	query := `
		SELECT seat_id FROM seat_locks
		WHERE trip_id = $1
		  AND seat_id = ANY($2)
		  AND user_id <> $3
		  AND expires_at > $4
		FOR UPDATE
	`

	var conflicting []string
	err := tx.Select(&conflicting, query, tripID, pq.Array(seatIDs), userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicting seat locks: %w", err)
	}

	return conflicting, nil
}

// ActiveLocksByUserTx returns the user's unexpired locks for a trip with
// row-level exclusive locks held, ordered by seat id. This is the first
// lock taken by the confirmation transaction; the fixed ordering
// (holder's locks, then booking seat lines) prevents deadlock cycles with
// concurrent acquire and confirm calls on the same trip.
func (r *SeatLockRepository) ActiveLocksByUserTx(tx *sqlx.Tx, tripID, userID string, now time.Time) ([]models.SeatLock, error) {
	query := `
		SELECT id, trip_id, seat_id, user_id, expires_at, created_at
		FROM seat_locks
		WHERE trip_id = $1 AND user_id = $2 AND expires_at > $3
		ORDER BY seat_id
		FOR UPDATE
	`

	var locks []models.SeatLock
	err := tx.Select(&locks, query, tripID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active seat locks: %w", err)
	}

	return locks, nil
}

// DeleteByUserTx removes all of a user's locks for a trip within the
// caller's transaction.
func (r *SeatLockRepository) DeleteByUserTx(tx *sqlx.Tx, tripID, userID string) error {
	_, err := tx.Exec(
		`DELETE FROM seat_locks WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user seat locks: %w", err)
	}
	return nil
}

// InsertLocksTx inserts one lock per requested seat. The unique constraint
// on (trip_id, seat_id) turns a concurrent insert race into a unique
// violation, which callers report as a conflict.
func (r *SeatLockRepository) InsertLocksTx(tx *sqlx.Tx, tripID string, seatIDs []string, userID string, expiresAt, now time.Time) error {
	query := `
		INSERT INTO seat_locks (id, trip_id, seat_id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, seatID := range seatIDs {
		if _, err := tx.Exec(query, uuid.New().String(), tripID, seatID, userID, expiresAt, now); err != nil {
			if IsUniqueViolation(err) {
				return err
			}
			return fmt.Errorf("failed to insert seat lock: %w", err)
		}
	}

	return nil
}

// DeleteByUser removes all of a user's locks for a trip. Idempotent;
// deleting zero rows is a success.
func (r *SeatLockRepository) DeleteByUser(tripID, userID string) error {
	_, err := r.db.Exec(
		`DELETE FROM seat_locks WHERE trip_id = $1 AND user_id = $2`,
		tripID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to release seat locks: %w", err)
	}
	return nil
}

// DeleteAllExpired removes every lock across all trips whose deadline has
// passed. Used by the background sweeper; the acquire path purges lazily
// and does not depend on this.
func (r *SeatLockRepository) DeleteAllExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM seat_locks WHERE expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired seat locks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return rows, nil
}

// ActiveSeatIDs returns the seat ids of all unexpired locks for a trip.
// Snapshot read for the availability index; advisory only.
func (r *SeatLockRepository) ActiveSeatIDs(tripID string, now time.Time) ([]string, error) {
	query := `
		SELECT seat_id FROM seat_locks
		WHERE trip_id = $1 AND expires_at > $2
	`

	var seatIDs []string
	if err := r.db.Select(&seatIDs, query, tripID, now); err != nil {
		return nil, fmt.Errorf("failed to fetch locked seat ids: %w", err)
	}

	return seatIDs, nil
}
