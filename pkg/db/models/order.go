package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/megano/shop-backend/pkg/enums"
)

// Order owns an immutable snapshot of basket lines taken at creation time.
// It never references live basket rows.
type Order struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status       enums.OrderStatus   `gorm:"column:status;not null"`
	DeliveryType *enums.DeliveryType `gorm:"column:delivery_type"`
	PaymentType  *enums.PaymentType  `gorm:"column:payment_type"`
	City         string              `gorm:"column:city"`
	Address      string              `gorm:"column:address"`
	TotalCost    decimal.Decimal     `gorm:"column:total_cost;type:numeric(10,2);not null"`
	Items        []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
