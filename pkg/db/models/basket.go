package models

import (
	"time"

	"github.com/google/uuid"
)

// Basket is the single mutable cart owned by a user, created on first use.
type Basket struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []BasketItem `gorm:"foreignKey:BasketID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}
