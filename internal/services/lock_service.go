package services

import (
	"fmt"
	"time"

	"github.com/Akilshaik/bus-booking/internal/config"
	"github.com/Akilshaik/bus-booking/internal/database"
	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/Akilshaik/bus-booking/pkg/clock"
	"github.com/sirupsen/logrus"
)

// LockService owns creation, replacement and release of temporary seat
// locks. Acquire is all-or-nothing: either every requested seat is locked
// for the caller, or nothing is written and the conflicting seats are
// reported. A holder has at most one active selection per trip;
// re-selecting replaces the previous one.
type LockService struct {
	tripRepo    *database.TripRepository
	seatRepo    *database.SeatRepository
	lockRepo    *database.SeatLockRepository
	bookingRepo *database.BookingRepository
	cfg         config.BookingConfig
	clk         clock.Clock
	logger      *logrus.Logger
}

// NewLockService creates a new LockService
func NewLockService(
	tripRepo *database.TripRepository,
	seatRepo *database.SeatRepository,
	lockRepo *database.SeatLockRepository,
	bookingRepo *database.BookingRepository,
	cfg config.BookingConfig,
	clk clock.Clock,
	logger *logrus.Logger,
) *LockService {
	return &LockService{
		tripRepo:    tripRepo,
		seatRepo:    seatRepo,
		lockRepo:    lockRepo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		clk:         clk,
		logger:      logger,
	}
}

// Acquire attempts to lock every seat in seatIDs for userID until now+ttl.
// A ttl of zero uses the configured default; requested TTLs are capped at
// the configured maximum.
//
// The whole attempt runs in one transaction with row-level exclusive locks
// on the candidate rows: expired locks for the trip are purged first, then
// other holders' unexpired locks and confirmed sales abort the attempt
// with a SeatConflictError, then the caller's previous selection for the
// trip is replaced by fresh locks. A unique-constraint violation on insert
// means another transaction won the same seats between evaluation and
// commit; it is reported as the same conflict outcome.
func (s *LockService) Acquire(tripID string, seatIDs []string, userID string, ttl time.Duration) (*models.SeatLockGrant, error) {
	if len(seatIDs) > s.cfg.MaxSeatsPerBooking {
		return nil, ErrTooManySeats
	}

	if ttl <= 0 {
		ttl = s.cfg.SeatLockTTL
	}
	if ttl > s.cfg.MaxSeatLockTTL {
		ttl = s.cfg.MaxSeatLockTTL
	}

	trip, err := s.tripRepo.GetActiveByID(tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	seats, err := s.seatRepo.GetByIDsForBus(trip.BusID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(seatIDs) {
		return nil, ErrSeatNotFound
	}

	now := s.clk.Now()
	expiresAt := now.Add(ttl)

	tx, err := s.lockRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.lockRepo.DeleteExpiredTx(tx, tripID, now); err != nil {
		return nil, err
	}

	conflicting, err := s.lockRepo.ConflictingSeatIDsTx(tx, tripID, seatIDs, userID, now)
	if err != nil {
		return nil, err
	}
	if len(conflicting) > 0 {
		return nil, &SeatConflictError{SeatIDs: conflicting}
	}

	sold, err := s.bookingRepo.ConfirmedSeatIDsTx(tx, tripID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(sold) > 0 {
		return nil, &SeatConflictError{SeatIDs: sold}
	}

	if err := s.lockRepo.DeleteByUserTx(tx, tripID, userID); err != nil {
		return nil, err
	}

	if err := s.lockRepo.InsertLocksTx(tx, tripID, seatIDs, userID, expiresAt, now); err != nil {
		if database.IsUniqueViolation(err) {
			// Another acquirer committed between our conflict check and
			// this insert; same outcome as an ordinary conflict.
			return nil, &SeatConflictError{SeatIDs: seatIDs}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id":    tripID,
		"user_id":    userID,
		"seat_count": len(seatIDs),
		"expires_at": expiresAt,
	}).Info("Seat locks acquired")

	return &models.SeatLockGrant{
		TripID:    tripID,
		SeatIDs:   seatIDs,
		ExpiresAt: expiresAt,
	}, nil
}

// Release removes all of the user's locks for the trip. Idempotent; used
// on explicit abandonment and as cleanup after booking attempts.
func (s *LockService) Release(tripID, userID string) error {
	if err := s.lockRepo.DeleteByUser(tripID, userID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id": tripID,
		"user_id": userID,
	}).Info("Seat locks released")

	return nil
}
