package services

import (
	"sort"

	"github.com/Akilshaik/bus-booking/internal/database"
	"github.com/Akilshaik/bus-booking/pkg/clock"
	"github.com/sirupsen/logrus"
)

// AvailabilityService computes which seats of a trip cannot be locked
// right now: seats with an unexpired lock plus seats sold through a
// CONFIRMED booking. It is a pure read over snapshot state, advisory for
// clients only; the lock and confirmation transactions never trust it as
// a gate and re-check under row locks.
type AvailabilityService struct {
	tripRepo    *database.TripRepository
	lockRepo    *database.SeatLockRepository
	bookingRepo *database.BookingRepository
	clk         clock.Clock
	logger      *logrus.Logger
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	tripRepo *database.TripRepository,
	lockRepo *database.SeatLockRepository,
	bookingRepo *database.BookingRepository,
	clk clock.Clock,
	logger *logrus.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		tripRepo:    tripRepo,
		lockRepo:    lockRepo,
		bookingRepo: bookingRepo,
		clk:         clk,
		logger:      logger,
	}
}

// UnavailableSeats returns the sorted set of seat ids currently
// unavailable for locking on the trip.
func (s *AvailabilityService) UnavailableSeats(tripID string) ([]string, error) {
	trip, err := s.tripRepo.GetByID(tripID)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	locked, err := s.lockRepo.ActiveSeatIDs(tripID, s.clk.Now())
	if err != nil {
		return nil, err
	}

	sold, err := s.bookingRepo.ConfirmedSeatIDs(tripID)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(locked)+len(sold))
	for _, id := range locked {
		set[id] = struct{}{}
	}
	for _, id := range sold {
		set[id] = struct{}{}
	}

	unavailable := make([]string, 0, len(set))
	for id := range set {
		unavailable = append(unavailable, id)
	}
	sort.Strings(unavailable)

	return unavailable, nil
}
