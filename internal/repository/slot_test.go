package repository

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectSlotsQuery(t *testing.T) {
	t.Run("Should filter by quantity and order by storage order", func(t *testing.T) {
		query, args, err := selectSlots().
			Where(sq.LtOrEq{"s.quantity": 1}).
			OrderBy("s.created_at", "s.id").
			ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "FROM vending_machine_slots s JOIN products p ON p.id = s.product_id")
		assert.Contains(t, query, "WHERE s.quantity <= $1")
		assert.Contains(t, query, "ORDER BY s.created_at, s.id")
		assert.Equal(t, []any{1}, args)
	})

	t.Run("Should lock only the slot row", func(t *testing.T) {
		id := uuid.New()
		query, args, err := selectSlots().
			Where(sq.Eq{"s.id": id}).
			Suffix("FOR UPDATE OF s").
			ToSql()
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE s.id = $1 FOR UPDATE OF s")
		assert.Equal(t, []any{id.String()}, args)
	})
}
