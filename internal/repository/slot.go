package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
)

type ListSlotsParams struct {
	// MaxQuantity restricts the result to slots with quantity <= MaxQuantity.
	MaxQuantity *int
	// Below restricts the result to slots with row and column < Below.
	Below *int
}

type GetSlotParams struct {
	ID uuid.UUID
	// ForUpdate locks the slot row until the surrounding transaction ends.
	ForUpdate bool
}

type SlotRepository interface {
	WithDB(db db.DB) SlotRepository
	CreateSlot(ctx context.Context, slot model.VendingMachineSlot) error
	ListSlots(ctx context.Context, params ListSlotsParams) ([]model.VendingMachineSlot, error)
	GetSlot(ctx context.Context, params GetSlotParams) (model.VendingMachineSlot, error)
	// DecrementSlotQuantity removes by units from the slot if it holds at
	// least that many and returns the remaining quantity.
	DecrementSlotQuantity(ctx context.Context, id uuid.UUID, by int) (int, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type slotRepository struct {
	db db.DB
}

func NewSlotRepository(db db.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r slotRepository) WithDB(db db.DB) SlotRepository {
	return &slotRepository{db: db}
}

func (r slotRepository) CreateSlot(ctx context.Context, slot model.VendingMachineSlot) error {
	query, args, err := psql.
		Insert("vending_machine_slots").
		SetMap(map[string]any{
			"id":         slot.ID,
			"product_id": slot.Product.ID,
			"quantity":   slot.Quantity,
			`"row"`:      slot.Row,
			`"column"`:   slot.Column,
			"created_at": slot.CreatedAt,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert slot: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}

	return nil
}

func (r slotRepository) ListSlots(ctx context.Context, params ListSlotsParams) ([]model.VendingMachineSlot, error) {
	builder := selectSlots().OrderBy("s.created_at", "s.id")
	if params.MaxQuantity != nil {
		builder = builder.Where(sq.LtOrEq{"s.quantity": *params.MaxQuantity})
	}
	if params.Below != nil {
		builder = builder.Where(sq.Lt{`s."row"`: *params.Below, `s."column"`: *params.Below})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list slots: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var slots []model.VendingMachineSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slots: %w", err)
	}

	return slots, nil
}

func (r slotRepository) GetSlot(ctx context.Context, params GetSlotParams) (model.VendingMachineSlot, error) {
	builder := selectSlots().Where(sq.Eq{"s.id": params.ID})
	if params.ForUpdate {
		builder = builder.Suffix("FOR UPDATE OF s")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return model.VendingMachineSlot{}, fmt.Errorf("build get slot: %w", err)
	}

	slot, err := scanSlot(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if db.IsNoRows(err) {
			return model.VendingMachineSlot{}, ErrNotFound
		}
		return model.VendingMachineSlot{}, err
	}

	return slot, nil
}

func (r slotRepository) DecrementSlotQuantity(ctx context.Context, id uuid.UUID, by int) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx, `
		UPDATE vending_machine_slots
		SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity
	`, id, by).Scan(&remaining)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, ErrConditionNotMet
		}
		return 0, fmt.Errorf("decrement slot quantity: %w", err)
	}

	return remaining, nil
}

func (r slotRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM vending_machine_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func selectSlots() sq.SelectBuilder {
	return psql.
		Select(
			"s.id", "s.quantity", `s."row"`, `s."column"`, "s.created_at",
			"p.id", "p.name", "p.price", "p.created_at", "p.updated_at",
		).
		From("vending_machine_slots s").
		Join("products p ON p.id = s.product_id")
}

func scanSlot(row pgx.Row) (model.VendingMachineSlot, error) {
	var (
		s     model.VendingMachineSlot
		price pgtype.Numeric
	)
	if err := row.Scan(
		&s.ID, &s.Quantity, &s.Row, &s.Column, &s.CreatedAt,
		&s.Product.ID, &s.Product.Name, &price, &s.Product.CreatedAt, &s.Product.UpdatedAt,
	); err != nil {
		if db.IsNoRows(err) {
			return s, err
		}
		return s, fmt.Errorf("scan slot: %w", err)
	}

	var err error
	if s.Product.Price, err = numericToDecimal(price); err != nil {
		return s, fmt.Errorf("convert price: %w", err)
	}

	return s, nil
}
