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
)

type AddCreditParams struct {
	UserID uuid.UUID
	// Amount may be negative to take credit back.
	Amount decimal.Decimal
}

type RefundResult struct {
	// Refunded is the balance held before the reset.
	Refunded decimal.Decimal
	// Balance is the balance after the reset, always zero.
	Balance decimal.Decimal
}

type CreditService interface {
	AddCredit(ctx context.Context, params AddCreditParams) (decimal.Decimal, error)
	Refund(ctx context.Context, userID uuid.UUID) (RefundResult, error)
}

type creditService struct {
	db            db.DB
	buyerRepo     repository.BuyerRepository
	outboxMsgRepo repository.OutboxMsgRepository
}

func NewCreditService(
	db db.DB,
	buyerRepo repository.BuyerRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) CreditService {
	return &creditService{
		db:            db,
		buyerRepo:     buyerRepo,
		outboxMsgRepo: outboxMsgRepo,
	}
}

func (s *creditService) AddCredit(ctx context.Context, params AddCreditParams) (decimal.Decimal, error) {
	amount := params.Amount.Round(model.CurrencyPlaces)
	if amount.Abs().GreaterThan(model.MaxCredit) {
		return decimal.Decimal{}, apperr.ValidationErr.WithMsg("amount is out of range")
	}

	var balance decimal.Decimal
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if _, err := getBuyer(ctx, s.buyerRepo.WithDB(db), params.UserID, false); err != nil {
			return err
		}

		var err error
		balance, err = s.buyerRepo.WithDB(db).AddCredit(ctx, params.UserID, amount)
		if err != nil {
			if errors.Is(err, repository.ErrConditionNotMet) {
				return apperr.NegativeBalanceErr
			}
			if errors.Is(err, repository.ErrOutOfRange) {
				return apperr.ValidationErr.WithMsg("balance would exceed the maximum credit")
			}
			return fmt.Errorf("buyer repository add credit: %w", err)
		}

		msg, err := outbox.NewMessage(ctx, event.TopicCreditAdded, params.UserID.String(), event.CreditAddedEvent{
			UserID:  params.UserID.String(),
			Amount:  amount.StringFixed(model.CurrencyPlaces),
			Balance: balance.StringFixed(model.CurrencyPlaces),
		})
		if err != nil {
			return err
		}

		return s.outboxMsgRepo.WithDB(db).CreateOutboxMsg(ctx, msg)
	}); err != nil {
		return decimal.Decimal{}, fmt.Errorf("db with tx: %w", err)
	}

	return balance, nil
}

func (s *creditService) Refund(ctx context.Context, userID uuid.UUID) (RefundResult, error) {
	var res RefundResult
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		buyer, err := getBuyer(ctx, s.buyerRepo.WithDB(db), userID, true)
		if err != nil {
			return err
		}

		if err := s.buyerRepo.WithDB(db).SetCredit(ctx, userID, decimal.Zero); err != nil {
			return fmt.Errorf("buyer repository set credit: %w", err)
		}

		res = RefundResult{Refunded: buyer.Credit, Balance: decimal.Zero}
		if buyer.Credit.IsZero() {
			return nil
		}

		msg, err := outbox.NewMessage(ctx, event.TopicCreditRefunded, userID.String(), event.CreditRefundedEvent{
			UserID:   userID.String(),
			Refunded: buyer.Credit.StringFixed(model.CurrencyPlaces),
		})
		if err != nil {
			return err
		}

		return s.outboxMsgRepo.WithDB(db).CreateOutboxMsg(ctx, msg)
	}); err != nil {
		return RefundResult{}, fmt.Errorf("db with tx: %w", err)
	}

	return res, nil
}

// getBuyer maps a missing buyer to apperr.UnauthenticatedErr: every
// logged in user gets a buyer on login.
func getBuyer(ctx context.Context, repo repository.BuyerRepository, userID uuid.UUID, forUpdate bool) (model.Buyer, error) {
	buyer, err := repo.GetBuyer(ctx, repository.GetBuyerParams{UserID: userID, ForUpdate: forUpdate})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Buyer{}, apperr.UnauthenticatedErr
		}
		return model.Buyer{}, fmt.Errorf("buyer repository get buyer: %w", err)
	}

	return buyer, nil
}
