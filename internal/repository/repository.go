package repository

import (
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConditionNotMet is returned when a guarded update matched no row
	// because the guard (stock, credit) did not hold.
	ErrConditionNotMet = errors.New("update condition not met")

	// ErrAlreadyExists is returned when a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrOutOfRange is returned when a value does not fit its numeric column.
	ErrOutOfRange = errors.New("value out of range")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Decimal{}, errors.New("numeric is null")
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, fmt.Errorf("numeric is not finite")
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// decimalArg formats d for a NUMERIC parameter.
func decimalArg(d decimal.Decimal) string {
	return d.StringFixed(model.CurrencyPlaces)
}
