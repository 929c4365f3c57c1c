package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the authentication principal. Shop-facing details live on Profile.
type User struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string     `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
