package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places kept for prices and credit.
const CurrencyPlaces = 2

// MaxCredit is the largest balance the credit column can hold, NUMERIC(10,2).
var MaxCredit = decimal.RequireFromString("99999999.99")

type Buyer struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Credit decimal.Decimal
}

// BuyerProfile is a buyer together with the user it wraps.
type BuyerProfile struct {
	Buyer Buyer
	User  User
}
