package models

import (
	"errors"
	"time"
)

// SeatLock is a time-bounded claim on one seat of one trip. At most one
// unexpired lock may exist per (trip, seat); the database enforces this
// with a unique constraint. A lock whose deadline has passed is logically
// dead even while the row still exists ("soft expiry") and every operation
// that reads locks must treat it as absent.
type SeatLock struct {
	ID        string    `json:"id" db:"id"`
	TripID    string    `json:"trip_id" db:"trip_id"`
	SeatID    string    `json:"seat_id" db:"seat_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the lock is logically dead at the given instant.
func (l *SeatLock) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// AcquireLocksRequest represents the request to lock a seat selection
type AcquireLocksRequest struct {
	SeatIDs []string `json:"seat_ids" binding:"required"`
	// TTLSeconds optionally overrides the configured lock TTL.
	TTLSeconds *int `json:"ttl_seconds,omitempty"`
}

// Validate validates the acquire locks request
func (r *AcquireLocksRequest) Validate() error {
	if len(r.SeatIDs) == 0 {
		return errors.New("at least one seat must be selected")
	}

	seen := make(map[string]struct{}, len(r.SeatIDs))
	for _, id := range r.SeatIDs {
		if id == "" {
			return errors.New("seat_ids must not contain empty values")
		}
		if _, dup := seen[id]; dup {
			return errors.New("seat_ids must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	if r.TTLSeconds != nil && *r.TTLSeconds <= 0 {
		return errors.New("ttl_seconds must be positive")
	}

	return nil
}

// SeatLockGrant is returned to the client after a successful acquire.
type SeatLockGrant struct {
	TripID    string    `json:"trip_id"`
	SeatIDs   []string  `json:"seat_ids"`
	ExpiresAt time.Time `json:"expires_at"`
}
