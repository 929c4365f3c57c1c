package models

import (
	"time"

	"github.com/google/uuid"
)

// BasketItem is one (product, quantity) line in a basket. A product appears
// at most once per basket; adds fold into the existing line.
type BasketItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BasketID  uuid.UUID `gorm:"column:basket_id;type:uuid;not null;uniqueIndex:idx_basket_product"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_basket_product"`
	Quantity  int       `gorm:"column:quantity;not null"`
	Product   *Product  `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
