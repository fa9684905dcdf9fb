package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
)

type GetBuyerParams struct {
	UserID uuid.UUID
	// ForUpdate locks the buyer row until the surrounding transaction ends.
	ForUpdate bool
}

type BuyerRepository interface {
	WithDB(db db.DB) BuyerRepository
	// GetOrCreateBuyer inserts buyer unless one already exists for
	// buyer.UserID, and returns the stored buyer.
	GetOrCreateBuyer(ctx context.Context, buyer model.Buyer) (model.Buyer, bool, error)
	GetBuyer(ctx context.Context, params GetBuyerParams) (model.Buyer, error)
	// AddCredit applies delta to the buyer's credit unless the result would
	// be negative, and returns the new credit. A result too large for the
	// credit column yields ErrOutOfRange.
	AddCredit(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
	SetCredit(ctx context.Context, userID uuid.UUID, credit decimal.Decimal) error
}

type buyerRepository struct {
	db db.DB
}

func NewBuyerRepository(db db.DB) BuyerRepository {
	return &buyerRepository{db: db}
}

func (r buyerRepository) WithDB(db db.DB) BuyerRepository {
	return &buyerRepository{db: db}
}

func (r buyerRepository) GetOrCreateBuyer(ctx context.Context, buyer model.Buyer) (model.Buyer, bool, error) {
	created, err := scanBuyer(r.db.QueryRow(ctx, `
		INSERT INTO buyers (id, user_id, credit)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING id, user_id, credit
	`, buyer.ID, buyer.UserID, decimalArg(buyer.Credit)))
	if err == nil {
		return created, true, nil
	}
	if !db.IsNoRows(err) {
		return model.Buyer{}, false, fmt.Errorf("insert buyer: %w", err)
	}

	existing, err := r.GetBuyer(ctx, GetBuyerParams{UserID: buyer.UserID})
	if err != nil {
		return model.Buyer{}, false, err
	}

	return existing, false, nil
}

func (r buyerRepository) GetBuyer(ctx context.Context, params GetBuyerParams) (model.Buyer, error) {
	query := `SELECT id, user_id, credit FROM buyers WHERE user_id = $1`
	if params.ForUpdate {
		query += ` FOR UPDATE`
	}

	buyer, err := scanBuyer(r.db.QueryRow(ctx, query, params.UserID))
	if err != nil {
		if db.IsNoRows(err) {
			return model.Buyer{}, ErrNotFound
		}
		return model.Buyer{}, fmt.Errorf("select buyer: %w", err)
	}

	return buyer, nil
}

func (r buyerRepository) AddCredit(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var credit pgtype.Numeric
	err := r.db.QueryRow(ctx, `
		UPDATE buyers
		SET credit = credit + $2::numeric
		WHERE user_id = $1 AND credit + $2::numeric >= 0
		RETURNING credit
	`, userID, decimalArg(delta)).Scan(&credit)
	if err != nil {
		if db.IsNoRows(err) {
			return decimal.Decimal{}, ErrConditionNotMet
		}
		if db.IsNumericOutOfRange(err) {
			return decimal.Decimal{}, ErrOutOfRange
		}
		return decimal.Decimal{}, fmt.Errorf("update buyer credit: %w", err)
	}

	return numericToDecimal(credit)
}

func (r buyerRepository) SetCredit(ctx context.Context, userID uuid.UUID, credit decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE buyers SET credit = $2 WHERE user_id = $1`, userID, decimalArg(credit))
	if err != nil {
		if db.IsCheckViolation(err) {
			return ErrConditionNotMet
		}
		return fmt.Errorf("set buyer credit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanBuyer(row pgx.Row) (model.Buyer, error) {
	var (
		b      model.Buyer
		credit pgtype.Numeric
	)
	if err := row.Scan(&b.ID, &b.UserID, &credit); err != nil {
		return b, err
	}

	var err error
	if b.Credit, err = numericToDecimal(credit); err != nil {
		return b, fmt.Errorf("convert credit: %w", err)
	}

	return b, nil
}
