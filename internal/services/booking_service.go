package services

import (
	"fmt"

	"github.com/Akilshaik/bus-booking/internal/config"
	"github.com/Akilshaik/bus-booking/internal/database"
	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/Akilshaik/bus-booking/pkg/clock"
	"github.com/sirupsen/logrus"
)

// BookingService converts a holder's seat locks into a confirmed booking
// and handles the one legal mutation afterwards, cancellation. Confirm is
// the engine's linchpin: a single transaction that re-validates the locks,
// re-checks for concurrent sales, persists the booking with its seat lines
// and passengers, and releases the locks, committing all of it or nothing.
type BookingService struct {
	tripRepo    *database.TripRepository
	seatRepo    *database.SeatRepository
	lockRepo    *database.SeatLockRepository
	bookingRepo *database.BookingRepository
	cfg         config.BookingConfig
	clk         clock.Clock
	logger      *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	tripRepo *database.TripRepository,
	seatRepo *database.SeatRepository,
	lockRepo *database.SeatLockRepository,
	bookingRepo *database.BookingRepository,
	cfg config.BookingConfig,
	clk clock.Clock,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		tripRepo:    tripRepo,
		seatRepo:    seatRepo,
		lockRepo:    lockRepo,
		bookingRepo: bookingRepo,
		cfg:         cfg,
		clk:         clk,
		logger:      logger,
	}
}

// Confirm converts the user's unexpired locks on the trip into a CONFIRMED
// booking.
//
// Row-level exclusive locks are taken in a fixed order, first the holder's
// seat_locks rows, then the booking_seats rows matching the locked seats,
// so concurrent acquire and confirm calls on the same trip cannot form a
// deadlock cycle. Two rejections are terminal and deliberately also clear
// the holder's remaining lock rows to force a clean re-selection:
// ErrLockExpired and ErrSeatAlreadySold. ErrIncompletePassengerData rolls
// everything back and leaves the locks untouched so the caller can
// resubmit.
func (s *BookingService) Confirm(tripID, userID string, passengers []models.PassengerDetail) (*models.Booking, error) {
	trip, err := s.tripRepo.GetActiveByID(tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	now := s.clk.Now()

	tx, err := s.bookingRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Re-read the holder's locks under row locks. Empty means the
	// selection lapsed; purge whatever expired rows remain and force a
	// restart.
	locks, err := s.lockRepo.ActiveLocksByUserTx(tx, tripID, userID, now)
	if err != nil {
		return nil, err
	}
	if len(locks) == 0 {
		if err := s.lockRepo.DeleteByUserTx(tx, tripID, userID); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil, ErrLockExpired
	}

	seatIDs := make([]string, len(locks))
	for i, l := range locks {
		seatIDs[i] = l.SeatID
	}

	// 2. A lock should make this impossible, but clock skew or a bug
	// elsewhere could have let a sale through; re-verify under row locks.
	sold, err := s.bookingRepo.ConfirmedSeatIDsTx(tx, tripID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(sold) > 0 {
		if err := s.lockRepo.DeleteByUserTx(tx, tripID, userID); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}

		s.logger.WithFields(logrus.Fields{
			"trip_id":  tripID,
			"user_id":  userID,
			"seat_ids": sold,
		}).Warn("Locked seats were sold before confirmation")

		return nil, ErrSeatAlreadySold
	}

	// 3. Every locked seat needs a complete passenger record; a partial
	// booking is never created.
	detailsBySeat := make(map[string]models.PassengerDetail, len(passengers))
	for _, p := range passengers {
		detailsBySeat[p.SeatID] = p
	}
	for _, seatID := range seatIDs {
		detail, ok := detailsBySeat[seatID]
		if !ok || !detail.IsComplete() {
			return nil, ErrIncompletePassengerData
		}
	}

	// 4. Fresh globally-unique PNR, regenerated a bounded number of times
	// on collision.
	pnr, err := s.bookingRepo.GeneratePNRTx(tx, s.cfg.PNRMaxAttempts)
	if err != nil {
		return nil, err
	}

	// 5. Per-seat fares and the booking itself.
	seats, err := s.seatRepo.GetByIDsForBus(trip.BusID, seatIDs)
	if err != nil {
		return nil, err
	}
	fareBySeat := make(map[string]float64, len(seats))
	for i := range seats {
		fareBySeat[seats[i].ID] = seats[i].Fare(trip.BaseFare)
	}

	totalFare := 0.0
	for _, seatID := range seatIDs {
		totalFare += fareBySeat[seatID]
	}

	booking := &models.Booking{
		PNR:       pnr,
		UserID:    userID,
		TripID:    tripID,
		Status:    models.BookingStatusConfirmed,
		TotalFare: totalFare,
		CreatedAt: now,
	}

	if err := s.bookingRepo.CreateTx(tx, booking); err != nil {
		if database.IsUniqueViolation(err) {
			// PNR collided with a concurrent insert despite the in-tx
			// check; surface as a transient conflict the caller retries.
			return nil, &SeatConflictError{SeatIDs: seatIDs}
		}
		return nil, err
	}

	seatLines := make([]models.BookingSeat, len(seatIDs))
	passengerRows := make([]models.Passenger, len(seatIDs))
	for i, seatID := range seatIDs {
		seatLines[i] = models.BookingSeat{
			BookingID: booking.ID,
			SeatID:    seatID,
			Fare:      fareBySeat[seatID],
		}
		detail := detailsBySeat[seatID]
		passengerRows[i] = models.Passenger{
			BookingID: booking.ID,
			SeatID:    seatID,
			Name:      detail.Name,
			Age:       detail.Age,
			Gender:    detail.Gender,
		}
	}

	if err := s.bookingRepo.CreateSeatsTx(tx, seatLines); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &SeatConflictError{SeatIDs: seatIDs}
		}
		return nil, err
	}

	if err := s.bookingRepo.CreatePassengersTx(tx, passengerRows); err != nil {
		return nil, err
	}

	// 6. The holds are superseded by the sale.
	if err := s.lockRepo.DeleteByUserTx(tx, tripID, userID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"pnr":        booking.PNR,
		"trip_id":    tripID,
		"user_id":    userID,
		"seat_count": len(seatIDs),
		"total_fare": totalFare,
	}).Info("Booking confirmed")

	return booking, nil
}

// Cancel transitions a CONFIRMED booking owned by userID to CANCELLED
// under a row-level exclusive lock on the booking row. The status is
// re-checked after the lock is held because a concurrent cancel may have
// completed first; cancelling a booking that is not CONFIRMED is an
// ErrInvalidStateTransition, never a silent success. Seat lines and
// passengers are retained; the freed seats become available again purely
// through the availability computation.
func (s *BookingService) Cancel(bookingID, userID, reason string) (*models.Booking, error) {
	now := s.clk.Now()

	tx, err := s.bookingRepo.BeginTx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking, err := s.bookingRepo.GetByIDForUpdateTx(tx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}
	if !booking.CanBeCancelled() {
		return nil, ErrInvalidStateTransition
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	if err := s.bookingRepo.MarkCancelledTx(tx, bookingID, reasonPtr, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = reasonPtr

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"user_id":    userID,
	}).Info("Booking cancelled")

	return booking, nil
}

// GetBooking retrieves a booking with its seat lines and passengers,
// scoped to the owning user.
func (s *BookingService) GetBooking(bookingID, userID string) (*models.BookingDetail, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.UserID != userID {
		return nil, ErrNotOwner
	}

	seats, err := s.bookingRepo.GetSeats(bookingID)
	if err != nil {
		return nil, err
	}

	passengers, err := s.bookingRepo.GetPassengers(bookingID)
	if err != nil {
		return nil, err
	}

	return &models.BookingDetail{
		Booking:    *booking,
		Seats:      seats,
		Passengers: passengers,
	}, nil
}

// ListBookings retrieves the user's bookings, newest first.
func (s *BookingService) ListBookings(userID string) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(userID)
}
