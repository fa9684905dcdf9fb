package apperr

import "github.com/tuanvumaihuynh/vending-machine/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	UnauthenticatedCode      = "UNAUTHENTICATED"
	AuthenticationFailedCode = "AUTHENTICATION_FAILED"
	SlotNotFoundCode         = "SLOT_NOT_FOUND"
	InsufficientFundsCode    = "INSUFFICIENT_FUNDS"
	InsufficientStockCode    = "INSUFFICIENT_STOCK"
	NegativeBalanceCode      = "NEGATIVE_BALANCE"
	UsernameTakenCode        = "USERNAME_TAKEN"
	DatabaseUnavailableCode  = "DATABASE_UNAVAILABLE"
)

// Buyer facing errors are reported as 400, including the missing session case.
var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	UnauthenticatedErr      = zerror.NewBadRequest(UnauthenticatedCode, "user not logged in")
	AuthenticationFailedErr = zerror.NewBadRequest(AuthenticationFailedCode, "invalid username or password")

	SlotNotFoundErr = zerror.NewNotFound(SlotNotFoundCode, "slot not found")

	InsufficientFundsErr = zerror.NewBadRequest(InsufficientFundsCode, "insufficient funds")
	InsufficientStockErr = zerror.NewBadRequest(InsufficientStockCode, "not enough units left in slot")
	NegativeBalanceErr   = zerror.NewBadRequest(NegativeBalanceCode, "cannot have negative balance")

	UsernameTakenErr = zerror.NewConflict(UsernameTakenCode, "username already taken")

	DatabaseUnavailableErr = zerror.NewServiceUnavailable(DatabaseUnavailableCode, "database unavailable")
)
