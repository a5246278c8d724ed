package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Akilshaik/bus-booking/internal/database"
	"github.com/Akilshaik/bus-booking/pkg/clock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAvailabilityServiceForTest(t *testing.T) (*AvailabilityService, sqlmock.Sqlmock, *clock.Fake, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")
	clk := clock.NewFake(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	svc := NewAvailabilityService(
		database.NewTripRepository(db),
		database.NewSeatLockRepository(db),
		database.NewBookingRepository(db),
		clk,
		newTestLogger(),
	)

	return svc, mock, clk, func() { db.Close() }
}

func TestAvailabilityServiceUnavailableSeats(t *testing.T) {
	tripID := uuid.New().String()
	busID := uuid.New().String()

	t.Run("Union Of Locked And Sold", func(t *testing.T) {
		svc, mock, clk, closeDB := newAvailabilityServiceForTest(t)
		defer closeDB()

		// seatB appears in both sets; it must be reported once.
		seatA := "a-" + uuid.New().String()
		seatB := "b-" + uuid.New().String()
		seatC := "c-" + uuid.New().String()

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs(tripID).
			WillReturnRows(tripRow(tripID, busID, 1500))
		mock.ExpectQuery(`SELECT seat_id FROM seat_locks`).
			WithArgs(tripID, clk.Now()).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(seatB).AddRow(seatA))
		mock.ExpectQuery(`SELECT bs.seat_id`).
			WithArgs(tripID).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(seatC).AddRow(seatB))

		unavailable, err := svc.UnavailableSeats(tripID)
		require.NoError(t, err)
		assert.Equal(t, []string{seatA, seatB, seatC}, unavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty Trip", func(t *testing.T) {
		svc, mock, clk, closeDB := newAvailabilityServiceForTest(t)
		defer closeDB()

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs(tripID).
			WillReturnRows(tripRow(tripID, busID, 1500))
		mock.ExpectQuery(`SELECT seat_id FROM seat_locks`).
			WithArgs(tripID, clk.Now()).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
		mock.ExpectQuery(`SELECT bs.seat_id`).
			WithArgs(tripID).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))

		unavailable, err := svc.UnavailableSeats(tripID)
		require.NoError(t, err)
		assert.Empty(t, unavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trip Not Found", func(t *testing.T) {
		svc, mock, _, closeDB := newAvailabilityServiceForTest(t)
		defer closeDB()

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs(tripID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "bus_id", "route_name", "journey_date",
				"departure_time", "arrival_time", "base_fare", "active",
			}))

		unavailable, err := svc.UnavailableSeats(tripID)
		assert.ErrorIs(t, err, ErrTripNotFound)
		assert.Nil(t, unavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Expiry Follows The Clock", func(t *testing.T) {
		// The expiry cutoff is whatever the clock says now; advancing it
		// changes the bound value sent to the query.
		svc, mock, clk, closeDB := newAvailabilityServiceForTest(t)
		defer closeDB()

		clk.Advance(9 * time.Minute)

		mock.ExpectQuery(`SELECT (.+) FROM trips`).
			WithArgs(tripID).
			WillReturnRows(tripRow(tripID, busID, 1500))
		mock.ExpectQuery(`SELECT seat_id FROM seat_locks`).
			WithArgs(tripID, clk.Now()).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))
		mock.ExpectQuery(`SELECT bs.seat_id`).
			WithArgs(tripID).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))

		unavailable, err := svc.UnavailableSeats(tripID)
		require.NoError(t, err)
		assert.Empty(t, unavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
