package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products. Subcategories are categories with a parent.
type Category struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title         string     `gorm:"column:title;not null"`
	ImageID       *uuid.UUID `gorm:"column:image_id;type:uuid"`
	ParentID      *uuid.UUID `gorm:"column:parent_id;type:uuid;index"`
	Image         *Image     `gorm:"foreignKey:ImageID"`
	Subcategories []Category `gorm:"foreignKey:ParentID"`
	Tags          []Tag      `gorm:"many2many:category_tags"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
