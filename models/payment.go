package models

import "time"

type PaymentMethod string

const (
	PaymentCard           PaymentMethod = "card"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

type CartLine struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unitPrice"`
	Quantity   int     `json:"quantity"`
}

type CardDetails struct {
	HolderName string `json:"holderName"`
	Number     string `json:"number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// OrderSummary is computed locally; nothing here is sent to a payment gateway.
type OrderSummary struct {
	Lines         []CartLine `json:"lines"`
	Subtotal      float64    `json:"subtotal"`
	DeliveryFee   float64    `json:"deliveryFee"`
	ServiceCharge float64    `json:"serviceCharge"`
	Total         float64    `json:"total"`
	TotalDisplay  string     `json:"totalDisplay"`
}

type PaymentConfirmation struct {
	Reference string        `json:"reference"`
	Method    PaymentMethod `json:"method"`
	Status    string        `json:"status"`
	Amount    float64       `json:"amount"`
	PaidAt    time.Time     `json:"paidAt"`
}
