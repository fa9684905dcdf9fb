package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBuyerAddCredit(t *testing.T) {
	ctx := context.Background()
	const guardedCredit = `UPDATE buyers\s+SET credit = credit \+ \$2::numeric\s+WHERE user_id = \$1 AND credit \+ \$2::numeric >= 0\s+RETURNING credit`

	t.Run("Should report an unmet guard when credit would go negative", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectQuery(guardedCredit).
			WithArgs(userID, "-20.80").
			WillReturnRows(pgxmock.NewRows([]string{"credit"}))

		_, err := NewBuyerRepository(mock).AddCredit(ctx, userID, decimal.RequireFromString("-20.8"))
		assert.ErrorIs(t, err, ErrConditionNotMet)
	})

	t.Run("Should report a credit too large for the column", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectQuery(guardedCredit).
			WithArgs(userID, "100000000.00").
			WillReturnError(&pgconn.PgError{Code: "22003", Message: "numeric field overflow"})

		_, err := NewBuyerRepository(mock).AddCredit(ctx, userID, decimal.RequireFromString("100000000"))
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestGetBuyerLocking(t *testing.T) {
	ctx := context.Background()
	columns := []string{"id", "user_id", "credit"}

	t.Run("Should lock the buyer row when asked to", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectQuery(`^SELECT id, user_id, credit FROM buyers WHERE user_id = \$1 FOR UPDATE$`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(columns))

		_, err := NewBuyerRepository(mock).GetBuyer(ctx, GetBuyerParams{UserID: userID, ForUpdate: true})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Should not lock plain reads", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectQuery(`^SELECT id, user_id, credit FROM buyers WHERE user_id = \$1$`).
			WithArgs(userID).
			WillReturnRows(pgxmock.NewRows(columns))

		_, err := NewBuyerRepository(mock).GetBuyer(ctx, GetBuyerParams{UserID: userID})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBuyerSetCredit(t *testing.T) {
	ctx := context.Background()
	const setCredit = `UPDATE buyers SET credit = \$2 WHERE user_id = \$1`

	t.Run("Should reset the credit", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectExec(setCredit).
			WithArgs(userID, "0.00").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, NewBuyerRepository(mock).SetCredit(ctx, userID, decimal.Zero))
	})

	t.Run("Should map the credit check constraint", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectExec(setCredit).
			WithArgs(userID, "-1.00").
			WillReturnError(&pgconn.PgError{Code: "23514"})

		err := NewBuyerRepository(mock).SetCredit(ctx, userID, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrConditionNotMet)
	})

	t.Run("Should report a missing buyer", func(t *testing.T) {
		mock := newMockDB(t)
		userID := uuid.New()
		mock.ExpectExec(setCredit).
			WithArgs(userID, "0.00").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, NewBuyerRepository(mock).SetCredit(ctx, userID, decimal.Zero), ErrNotFound)
	})
}
