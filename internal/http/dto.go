package http

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
)

type ProductResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// Price is a fixed two decimal string, e.g. "10.40".
	Price string `json:"price"`
}

type SlotResponse struct {
	ID       uuid.UUID `json:"id"`
	Quantity int       `json:"quantity"`
	// Coordinates is [column, row].
	Coordinates [2]int          `json:"coordinates"`
	Product     ProductResponse `json:"product"`
}

type UserResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
}

type ProfileResponse struct {
	Balance json.Number  `json:"balance"`
	User    UserResponse `json:"user"`
}

type BalanceResponse struct {
	Balance json.Number `json:"balance"`
}

type RefundResponse struct {
	Balance  json.Number `json:"balance"`
	Refunded json.Number `json:"refunded"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AddCreditRequest struct {
	Amount json.Number `json:"amount"`
}

type OrderRequest struct {
	SlotID   string `json:"slot_id"`
	Quantity int    `json:"quantity"`
}

// money renders an amount as a JSON number with two decimals.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(model.CurrencyPlaces))
}

func newSlotResponse(s model.VendingMachineSlot) SlotResponse {
	return SlotResponse{
		ID:          s.ID,
		Quantity:    s.Quantity,
		Coordinates: [2]int{s.Column, s.Row},
		Product: ProductResponse{
			ID:    s.Product.ID,
			Name:  s.Product.Name,
			Price: s.Product.Price.StringFixed(model.CurrencyPlaces),
		},
	}
}

func newProfileResponse(p model.BuyerProfile) ProfileResponse {
	return ProfileResponse{
		Balance: money(p.Buyer.Credit),
		User: UserResponse{
			ID:      p.User.ID,
			Name:    p.User.FirstName,
			Surname: p.User.LastName,
		},
	}
}
