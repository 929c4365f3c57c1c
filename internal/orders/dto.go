package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/megano/shop-backend/pkg/enums"
)

// FinalizeInput carries the checkout form submitted against a drafted order.
type FinalizeInput struct {
	DeliveryType string
	PaymentType  string
	City         string
	Address      string
}

// PaymentDetails is the simulated card payload. No real charge happens; the
// fields are validated for presence and shape only.
type PaymentDetails struct {
	Number string
	Name   string
	Month  string
	Year   string
	Code   string
}

// LineView is the public projection of one snapshot line.
type LineView struct {
	ProductID uuid.UUID       `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"count"`
}

// OrderView is the public projection of an order with its snapshot lines.
type OrderView struct {
	ID           uuid.UUID         `json:"id"`
	CreatedAt    time.Time         `json:"createdAt"`
	Status       enums.OrderStatus `json:"status"`
	DeliveryType string            `json:"deliveryType,omitempty"`
	PaymentType  string            `json:"paymentType,omitempty"`
	City         string            `json:"city,omitempty"`
	Address      string            `json:"address,omitempty"`
	TotalCost    decimal.Decimal   `json:"totalCost"`
	Items        []LineView        `json:"products"`
}
