package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/http/metric"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
	"github.com/tuanvumaihuynh/vending-machine/internal/session"
)

type buyerHandler struct {
	creditSvc service.CreditService
	orderSvc  service.OrderService
	metrics   *metric.Metrics
}

func newBuyerHandler(creditSvc service.CreditService, orderSvc service.OrderService, metrics *metric.Metrics) *buyerHandler {
	return &buyerHandler{
		creditSvc: creditSvc,
		orderSvc:  orderSvc,
		metrics:   metrics,
	}
}

func (h *buyerHandler) AddCredit(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	var req AddCreditRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return paramErr("amount", err)
	}

	balance, err := h.creditSvc.AddCredit(r.Context(), service.AddCreditParams{UserID: userID, Amount: amount})
	if err != nil {
		return fmt.Errorf("credit service add credit: %w", err)
	}

	return writeJSON(w, http.StatusOK, BalanceResponse{Balance: money(balance)})
}

func (h *buyerHandler) Refund(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	res, err := h.creditSvc.Refund(r.Context(), userID)
	if err != nil {
		return fmt.Errorf("credit service refund: %w", err)
	}

	return writeJSON(w, http.StatusOK, RefundResponse{
		Balance:  money(res.Balance),
		Refunded: money(res.Refunded),
	})
}

func (h *buyerHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUserID(r)
	if err != nil {
		return err
	}

	var req OrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return paramErr("slot_id", err)
	}

	res, err := h.orderSvc.PlaceOrder(r.Context(), service.PlaceOrderParams{
		UserID:   userID,
		SlotID:   slotID,
		Quantity: req.Quantity,
	})
	h.metrics.OrderOutcomes.WithLabelValues(orderOutcome(err)).Inc()
	if err != nil {
		return fmt.Errorf("order service place order: %w", err)
	}

	return writeJSON(w, http.StatusOK, BalanceResponse{Balance: money(res.Balance)})
}

func orderOutcome(err error) string {
	switch {
	case err == nil:
		return metric.OrderOutcomeSuccess
	case errors.Is(err, apperr.InsufficientFundsErr):
		return metric.OrderOutcomeInsufficientFunds
	case errors.Is(err, apperr.InsufficientStockErr):
		return metric.OrderOutcomeInsufficientStock
	case errors.Is(err, apperr.SlotNotFoundErr):
		return metric.OrderOutcomeNotFound
	default:
		return metric.OrderOutcomeError
	}
}

// requireUserID returns the user of the request session.
func requireUserID(r *http.Request) (uuid.UUID, error) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		return uuid.Nil, apperr.UnauthenticatedErr
	}
	return s.UserID, nil
}
