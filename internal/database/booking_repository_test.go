package database

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Akilshaik/bus-booking/internal/models"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingRepoForTest(t *testing.T) (*BookingRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewBookingRepository(db), mock, func() { db.Close() }
}

func TestGeneratePNRTx(t *testing.T) {
	pnrPattern := regexp.MustCompile(`^[0-9A-F]{12}$`)

	t.Run("First Candidate Free", func(t *testing.T) {
		repo, mock, closeDB := newBookingRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE pnr = $1`)).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		pnr, err := repo.GeneratePNRTx(tx, 5)
		require.NoError(t, err)
		assert.Regexp(t, pnrPattern, pnr)
	})

	t.Run("Collision Then Retry", func(t *testing.T) {
		repo, mock, closeDB := newBookingRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE pnr = $1`)).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE pnr = $1`)).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		pnr, err := repo.GeneratePNRTx(tx, 5)
		require.NoError(t, err)
		assert.Regexp(t, pnrPattern, pnr)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Attempts Exhausted", func(t *testing.T) {
		repo, mock, closeDB := newBookingRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		for i := 0; i < 3; i++ {
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM bookings WHERE pnr = $1`)).
				WithArgs(sqlmock.AnyArg()).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		}

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		pnr, err := repo.GeneratePNRTx(tx, 3)
		assert.Error(t, err)
		assert.Empty(t, pnr)
		assert.Contains(t, err.Error(), "3 attempts")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMarkCancelledTx(t *testing.T) {
	bookingID := uuid.New().String()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		repo, mock, closeDB := newBookingRepoForTest(t)
		defer closeDB()

		reason := "change of plans"

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, now, reason).
			WillReturnResult(sqlmock.NewResult(0, 1))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		err = repo.MarkCancelledTx(tx, bookingID, &reason, now)
		assert.NoError(t, err)
	})

	t.Run("Booking Missing", func(t *testing.T) {
		repo, mock, closeDB := newBookingRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, now, nil).
			WillReturnResult(sqlmock.NewResult(0, 0))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		err = repo.MarkCancelledTx(tx, bookingID, nil, now)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestCreateTxUniqueViolationPassthrough(t *testing.T) {
	repo, mock, closeDB := newBookingRepoForTest(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "bookings_pnr_key"})

	tx, err := repo.BeginTx()
	require.NoError(t, err)
	defer tx.Rollback()

	booking := &models.Booking{
		PNR:       "1A2B3C4D5E6F",
		UserID:    uuid.New().String(),
		TripID:    uuid.New().String(),
		Status:    models.BookingStatusConfirmed,
		TotalFare: 1500,
		CreatedAt: time.Now(),
	}

	err = repo.CreateTx(tx, booking)
	require.Error(t, err)
	// The raw driver error must survive so callers can classify it.
	assert.True(t, IsUniqueViolation(err))
	assert.NotEmpty(t, booking.ID)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(assert.AnError))
	assert.False(t, IsUniqueViolation(nil))
}
