package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/event"
	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
	"github.com/tuanvumaihuynh/vending-machine/pkg/outbox"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type PlaceOrderParams struct {
	UserID   uuid.UUID `json:"-"`
	SlotID   uuid.UUID `json:"slot_id"`
	Quantity int       `json:"quantity" validate:"gte=1,lte=100"`
}

type PlaceOrderResult struct {
	Total   decimal.Decimal
	Balance decimal.Decimal
	// Remaining is the quantity left in the slot. Zero means the slot was deleted.
	Remaining int
}

type OrderService interface {
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (PlaceOrderResult, error)
}

type orderService struct {
	db            db.DB
	buyerRepo     repository.BuyerRepository
	slotRepo      repository.SlotRepository
	outboxMsgRepo repository.OutboxMsgRepository
	validator     validator.Validator
}

func NewOrderService(
	db db.DB,
	buyerRepo repository.BuyerRepository,
	slotRepo repository.SlotRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
	validator validator.Validator,
) OrderService {
	return &orderService{
		db:            db,
		buyerRepo:     buyerRepo,
		slotRepo:      slotRepo,
		outboxMsgRepo: outboxMsgRepo,
		validator:     validator,
	}
}

// PlaceOrder settles an order in one transaction: the buyer row and then the
// slot row are locked, the slot loses exactly params.Quantity units (and is
// deleted when it reaches zero) and the buyer is debited quantity * price.
func (s *orderService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (PlaceOrderResult, error) {
	if err := validate(s.validator, params); err != nil {
		return PlaceOrderResult{}, err
	}

	var res PlaceOrderResult
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		buyerRepo := s.buyerRepo.WithDB(db)
		slotRepo := s.slotRepo.WithDB(db)

		buyer, err := getBuyer(ctx, buyerRepo, params.UserID, true)
		if err != nil {
			return err
		}

		slot, err := slotRepo.GetSlot(ctx, repository.GetSlotParams{ID: params.SlotID, ForUpdate: true})
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.SlotNotFoundErr
			}
			return fmt.Errorf("slot repository get slot: %w", err)
		}

		total := slot.Product.Price.Mul(decimal.NewFromInt(int64(params.Quantity))).Round(model.CurrencyPlaces)
		if total.GreaterThan(buyer.Credit) {
			return apperr.InsufficientFundsErr
		}

		if params.Quantity > slot.Quantity {
			return apperr.InsufficientStockErr
		}

		remaining, err := slotRepo.DecrementSlotQuantity(ctx, slot.ID, params.Quantity)
		if err != nil {
			if errors.Is(err, repository.ErrConditionNotMet) {
				return apperr.InsufficientStockErr
			}
			return fmt.Errorf("slot repository decrement slot quantity: %w", err)
		}

		if remaining == 0 {
			if err := slotRepo.DeleteSlot(ctx, slot.ID); err != nil {
				return fmt.Errorf("slot repository delete slot: %w", err)
			}
		}

		balance, err := buyerRepo.AddCredit(ctx, params.UserID, total.Neg())
		if err != nil {
			if errors.Is(err, repository.ErrConditionNotMet) {
				return apperr.InsufficientFundsErr
			}
			return fmt.Errorf("buyer repository add credit: %w", err)
		}

		msg, err := outbox.NewMessage(ctx, event.TopicOrderPlaced, slot.ID.String(), event.OrderPlacedEvent{
			UserID:      params.UserID.String(),
			SlotID:      slot.ID.String(),
			ProductID:   slot.Product.ID.String(),
			ProductName: slot.Product.Name,
			Quantity:    params.Quantity,
			UnitPrice:   slot.Product.Price.StringFixed(model.CurrencyPlaces),
			Total:       total.StringFixed(model.CurrencyPlaces),
			Balance:     balance.StringFixed(model.CurrencyPlaces),
			SlotEmptied: remaining == 0,
		})
		if err != nil {
			return err
		}

		if err := s.outboxMsgRepo.WithDB(db).CreateOutboxMsg(ctx, msg); err != nil {
			return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
		}

		res = PlaceOrderResult{Total: total, Balance: balance, Remaining: remaining}
		return nil
	}); err != nil {
		return PlaceOrderResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return res, nil
}
