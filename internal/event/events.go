package event

const (
	TopicOrderPlaced    = "order.placed"
	TopicCreditAdded    = "credit.added"
	TopicCreditRefunded = "credit.refunded"
)

// Amounts are fixed 2-decimal strings so consumers never see float rounding.

type OrderPlacedEvent struct {
	UserID      string `json:"user_id"`
	SlotID      string `json:"slot_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Total       string `json:"total"`
	Balance     string `json:"balance"`
	SlotEmptied bool   `json:"slot_emptied"`
}

type CreditAddedEvent struct {
	UserID  string `json:"user_id"`
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}

type CreditRefundedEvent struct {
	UserID   string `json:"user_id"`
	Refunded string `json:"refunded"`
}
