package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is buyer feedback attached to a product. The product rating is the
// mean of all review rates, recomputed on insert.
type Review struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Author    string    `gorm:"column:author"`
	Email     string    `gorm:"column:email"`
	Text      string    `gorm:"column:text"`
	Rate      int       `gorm:"column:rate;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
