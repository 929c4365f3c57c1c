package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is a stored reference to a hosted picture.
type Image struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Src       string    `gorm:"column:src;not null"`
	Alt       string    `gorm:"column:alt"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
