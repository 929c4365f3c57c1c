package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag labels products and categories for catalog filtering.
type Tag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
