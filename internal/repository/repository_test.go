package repository

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
)

// mockDB runs repository queries against pgxmock. Transactions are flattened
// into the mock connection.
type mockDB struct {
	pgxmock.PgxPoolIface
}

var _ db.DB = mockDB{}

func (m mockDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(m)
}

func newMockDB(t *testing.T) mockDB {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mockDB{mock}
}
