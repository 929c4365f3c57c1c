package models

import "github.com/google/uuid"

// Specification is a single name/value characteristic of a product.
type Specification struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null"`
	Value     string    `gorm:"column:value;not null"`
}
