package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineItem captures the product snapshot for one order line. Price and
// title are copied at order creation so later catalog edits cannot drift the
// order's cost.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Title     string          `gorm:"column:title;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
