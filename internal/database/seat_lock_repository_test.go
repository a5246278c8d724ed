package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeatLockRepoForTest(t *testing.T) (*SeatLockRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewSeatLockRepository(db), mock, func() { db.Close() }
}

func TestConflictingSeatIDsTx(t *testing.T) {
	tripID := uuid.New().String()
	userID := uuid.New().String()
	seatA := uuid.New().String()
	seatB := uuid.New().String()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("Reports Other Holders Only", func(t *testing.T) {
		repo, mock, closeDB := newSeatLockRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT seat_id FROM seat_locks`).
			WithArgs(tripID, pq.Array([]string{seatA, seatB}), userID, now).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(seatB))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		conflicting, err := repo.ConflictingSeatIDsTx(tx, tripID, []string{seatA, seatB}, userID, now)
		require.NoError(t, err)
		assert.Equal(t, []string{seatB}, conflicting)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Conflicts", func(t *testing.T) {
		repo, mock, closeDB := newSeatLockRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT seat_id FROM seat_locks`).
			WithArgs(tripID, pq.Array([]string{seatA}), userID, now).
			WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		conflicting, err := repo.ConflictingSeatIDsTx(tx, tripID, []string{seatA}, userID, now)
		require.NoError(t, err)
		assert.Empty(t, conflicting)
	})
}

func TestInsertLocksTx(t *testing.T) {
	tripID := uuid.New().String()
	userID := uuid.New().String()
	seatA := uuid.New().String()
	seatB := uuid.New().String()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	expiresAt := now.Add(8 * time.Minute)

	t.Run("One Row Per Seat", func(t *testing.T) {
		repo, mock, closeDB := newSeatLockRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO seat_locks`).
			WithArgs(sqlmock.AnyArg(), tripID, seatA, userID, expiresAt, now).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO seat_locks`).
			WithArgs(sqlmock.AnyArg(), tripID, seatB, userID, expiresAt, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		err = repo.InsertLocksTx(tx, tripID, []string{seatA, seatB}, userID, expiresAt, now)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unique Violation Passes Through", func(t *testing.T) {
		repo, mock, closeDB := newSeatLockRepoForTest(t)
		defer closeDB()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO seat_locks`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "seat_locks_trip_id_seat_id_key"})

		tx, err := repo.BeginTx()
		require.NoError(t, err)
		defer tx.Rollback()

		err = repo.InsertLocksTx(tx, tripID, []string{seatA}, userID, expiresAt, now)
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})
}

func TestActiveLocksByUserTx(t *testing.T) {
	tripID := uuid.New().String()
	userID := uuid.New().String()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	repo, mock, closeDB := newSeatLockRepoForTest(t)
	defer closeDB()

	seatA := "a-" + uuid.New().String()
	seatB := "b-" + uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM seat_locks`).
		WithArgs(tripID, userID, now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "trip_id", "seat_id", "user_id", "expires_at", "created_at"}).
			AddRow(uuid.New().String(), tripID, seatA, userID, now.Add(5*time.Minute), now.Add(-3*time.Minute)).
			AddRow(uuid.New().String(), tripID, seatB, userID, now.Add(5*time.Minute), now.Add(-3*time.Minute)))

	tx, err := repo.BeginTx()
	require.NoError(t, err)
	defer tx.Rollback()

	locks, err := repo.ActiveLocksByUserTx(tx, tripID, userID, now)
	require.NoError(t, err)
	require.Len(t, locks, 2)
	assert.Equal(t, seatA, locks[0].SeatID)
	assert.Equal(t, seatB, locks[1].SeatID)
	assert.False(t, locks[0].IsExpired(now))
}

func TestDeleteByUser(t *testing.T) {
	tripID := uuid.New().String()
	userID := uuid.New().String()

	repo, mock, closeDB := newSeatLockRepoForTest(t)
	defer closeDB()

	// Deleting zero rows is still a success.
	mock.ExpectExec(`DELETE FROM seat_locks`).
		WithArgs(tripID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByUser(tripID, userID)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveSeatIDs(t *testing.T) {
	tripID := uuid.New().String()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	repo, mock, closeDB := newSeatLockRepoForTest(t)
	defer closeDB()

	seatA := uuid.New().String()

	mock.ExpectQuery(`SELECT seat_id FROM seat_locks`).
		WithArgs(tripID, now).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(seatA))

	seatIDs, err := repo.ActiveSeatIDs(tripID, now)
	require.NoError(t, err)
	assert.Equal(t, []string{seatA}, seatIDs)
}
