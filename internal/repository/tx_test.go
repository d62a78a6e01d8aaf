package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/models"
	appErr "github.com/bracula/campus/pkg/errors"
)

func TestTxExecutor_CommitsAfterAllSteps(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "events"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var calls []int
	err := exec.Run(context.Background(), "test", func(ctx context.Context, tx *gorm.DB) error {
		calls = append(calls, 1)
		return tx.Exec(`UPDATE "events" SET name = ?`, "x").Error
	}, func(ctx context.Context, tx *gorm.DB) error {
		calls = append(calls, 2)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxExecutor_RollsBackAndStopsOnStepFailure(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	cause := errors.New("boom")
	thirdRan := false
	err := exec.Run(context.Background(), "test",
		func(ctx context.Context, tx *gorm.DB) error { return nil },
		func(ctx context.Context, tx *gorm.DB) error { return cause },
		func(ctx context.Context, tx *gorm.DB) error { thirdRan = true; return nil },
	)
	require.Error(t, err)
	assert.False(t, thirdRan)
	assert.True(t, appErr.IsCode(err, appErr.CodeRolledBack))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "step 2")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxExecutor_PreservesDomainCause(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := exec.Run(context.Background(), "test", func(ctx context.Context, tx *gorm.DB) error {
		return ErrDuplicateEmail(nil)
	})
	require.Error(t, err)
	c := appErr.Cause(err)
	require.NotNil(t, c)
	assert.Equal(t, appErr.CodeDuplicateEmail, c.Code)
}

func TestTxExecutor_BeginFailure(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	ran := false
	err := exec.Run(context.Background(), "test", func(ctx context.Context, tx *gorm.DB) error {
		ran = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, ran)
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
}

func TestTxExecutor_CommitFailureIsStorageFailure(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := exec.Run(context.Background(), "test", func(ctx context.Context, tx *gorm.DB) error { return nil })
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTxExecutor_RollsBackOnPanic(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = exec.Run(context.Background(), "test", func(ctx context.Context, tx *gorm.DB) error {
			panic("kaput")
		})
	})
	require.NoError(t, mock.ExpectationsWereMet())
}

// The enrichment read failing after a successful insert must leave no commit behind.
func TestTxExecutor_FailedReadAfterWriteRollsBackInsert(t *testing.T) {
	db, mock := newMockDB(t)
	exec := NewTxExecutor(db)
	events := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "events"`).WillReturnRows(sqlmock.NewRows([]string{"event_id"}).AddRow(11))
	mock.ExpectQuery(`FROM events AS e JOIN users u`).WillReturnError(errors.New("read failed"))
	mock.ExpectRollback()

	e := &models.Event{Name: "Hack Night", Type: "tech", Date: time.Now(), Location: "Lab 3", UserID: 1, CoverImage: "c.png"}
	err := exec.Run(context.Background(), "create_event",
		func(ctx context.Context, tx *gorm.DB) error { return events.WithTx(tx).Create(ctx, e) },
		func(ctx context.Context, tx *gorm.DB) error {
			_, err := events.WithTx(tx).GetView(ctx, e.ID)
			return err
		},
	)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeRolledBack))
	require.NoError(t, mock.ExpectationsWereMet())
}
