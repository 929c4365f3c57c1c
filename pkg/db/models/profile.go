package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the shop-facing details for a user, created at sign-up.
type Profile struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FullName  string    `gorm:"column:full_name"`
	Email     string    `gorm:"column:email"`
	Phone     string    `gorm:"column:phone"`
	AvatarURL *string   `gorm:"column:avatar_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
