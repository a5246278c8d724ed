package services

import (
	"fmt"
	"time"

	"github.com/Akilshaik/bus-booking/internal/database"
	"github.com/Akilshaik/bus-booking/pkg/clock"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SweeperService periodically deletes seat lock rows whose deadline has
// passed. Expiry is already enforced logically by every read and by the
// acquire path's lazy purge; the sweeper only keeps the table from
// accumulating dead rows on trips nobody touches again.
type SweeperService struct {
	cron     *cron.Cron
	lockRepo *database.SeatLockRepository
	clk      clock.Clock
	logger   *logrus.Logger
}

// NewSweeperService creates a new SweeperService
func NewSweeperService(lockRepo *database.SeatLockRepository, clk clock.Clock, logger *logrus.Logger) *SweeperService {
	return &SweeperService{
		cron:     cron.New(cron.WithSeconds()),
		lockRepo: lockRepo,
		clk:      clk,
		logger:   logger,
	}
}

// Start schedules the sweep and starts the scheduler.
func (s *SweeperService) Start() error {
	// Every minute, on the minute.
	_, err := s.cron.AddFunc("0 * * * * *", s.sweepExpiredLocksJob)
	if err != nil {
		return fmt.Errorf("failed to schedule seat lock sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Seat lock sweeper started")

	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *SweeperService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Seat lock sweeper stopped")
}

func (s *SweeperService) sweepExpiredLocksJob() {
	start := time.Now()

	removed, err := s.lockRepo.DeleteAllExpired(s.clk.Now())
	if err != nil {
		s.logger.WithError(err).Error("Seat lock sweep failed")
		return
	}

	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"removed":  removed,
			"duration": time.Since(start).String(),
		}).Info("Swept expired seat locks")
	}
}
