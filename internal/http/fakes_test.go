package http_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/service"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type fakeSlotSvc struct {
	v     validator.Validator
	slots []model.VendingMachineSlot

	lastFilter *int
}

func (f *fakeSlotSvc) ListSlots(_ context.Context, params service.ListSlotsParams) ([]model.VendingMachineSlot, error) {
	if err := f.v.Validate(params); err != nil {
		return nil, apperr.ValidationErr.WrapParent(err)
	}
	f.lastFilter = params.Quantity

	var res []model.VendingMachineSlot
	for _, s := range f.slots {
		if params.Quantity == nil || s.Quantity <= *params.Quantity {
			res = append(res, s)
		}
	}
	return res, nil
}

func (f *fakeSlotSvc) GetSlotMatrix(context.Context) (model.SlotMatrix, error) {
	var m model.SlotMatrix
	for i := range f.slots {
		s := f.slots[i]
		if s.Row < model.SlotMatrixSize && s.Column < model.SlotMatrixSize && m[s.Row][s.Column] == nil {
			m[s.Row][s.Column] = &s
		}
	}
	return m, nil
}

func (f *fakeSlotSvc) GetSlot(_ context.Context, id uuid.UUID) (model.VendingMachineSlot, error) {
	for _, s := range f.slots {
		if s.ID == id {
			return s, nil
		}
	}
	return model.VendingMachineSlot{}, apperr.SlotNotFoundErr
}

// fakeBuyers backs the auth, credit and order fakes with one balance per user.
type fakeBuyers struct {
	mu       sync.Mutex
	users    map[string]model.User
	password map[string]string
	credit   map[uuid.UUID]decimal.Decimal
	price    decimal.Decimal
}

func newFakeBuyers() *fakeBuyers {
	return &fakeBuyers{
		users:    map[string]model.User{},
		password: map[string]string{},
		credit:   map[uuid.UUID]decimal.Decimal{},
		price:    decimal.RequireFromString("10.40"),
	}
}

func (f *fakeBuyers) addUser(username, password string) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: username, FirstName: "Jorge", LastName: "Perez"}
	f.users[username] = u
	f.password[username] = password
	return u
}

func (f *fakeBuyers) profile(u model.User) model.BuyerProfile {
	return model.BuyerProfile{
		Buyer: model.Buyer{UserID: u.ID, Credit: f.credit[u.ID]},
		User:  u,
	}
}

func (f *fakeBuyers) Login(_ context.Context, params service.LoginParams) (model.BuyerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[params.Username]
	if !ok || f.password[params.Username] != params.Password {
		return model.BuyerProfile{}, apperr.AuthenticationFailedErr
	}
	if _, ok := f.credit[u.ID]; !ok {
		f.credit[u.ID] = decimal.Zero
	}
	return f.profile(u), nil
}

func (f *fakeBuyers) Profile(_ context.Context, userID uuid.UUID) (model.BuyerProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			return f.profile(u), nil
		}
	}
	return model.BuyerProfile{}, apperr.UnauthenticatedErr
}

func (f *fakeBuyers) CreateUser(context.Context, service.CreateUserParams) (model.User, error) {
	return model.User{}, errors.New("not supported")
}

func (f *fakeBuyers) AddCredit(_ context.Context, params service.AddCreditParams) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := f.credit[params.UserID].Add(params.Amount)
	if next.IsNegative() {
		return decimal.Decimal{}, apperr.NegativeBalanceErr
	}
	f.credit[params.UserID] = next
	return next, nil
}

func (f *fakeBuyers) Refund(_ context.Context, userID uuid.UUID) (service.RefundResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	refunded := f.credit[userID]
	f.credit[userID] = decimal.Zero
	return service.RefundResult{Refunded: refunded, Balance: decimal.Zero}, nil
}

func (f *fakeBuyers) PlaceOrder(_ context.Context, params service.PlaceOrderParams) (service.PlaceOrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if params.Quantity < 1 {
		return service.PlaceOrderResult{}, apperr.ValidationErr
	}
	total := f.price.Mul(decimal.NewFromInt(int64(params.Quantity)))
	if total.GreaterThan(f.credit[params.UserID]) {
		return service.PlaceOrderResult{}, apperr.InsufficientFundsErr
	}
	f.credit[params.UserID] = f.credit[params.UserID].Sub(total)
	return service.PlaceOrderResult{Total: total, Balance: f.credit[params.UserID]}, nil
}

type fakeHealth struct {
	err error
}

func (f fakeHealth) IsHealthy(context.Context) (bool, error) {
	return f.err == nil, f.err
}
