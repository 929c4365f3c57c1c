package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog listing. Count is the stock counter; every mutation
// goes through a guarded update so it never drops below zero.
type Product struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID      uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	Title           string              `gorm:"column:title;not null"`
	Description     string              `gorm:"column:description"`
	FullDescription string              `gorm:"column:full_description"`
	Price           decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	SalePrice       decimal.NullDecimal `gorm:"column:sale_price;type:numeric(10,2)"`
	SaleFrom        *time.Time          `gorm:"column:sale_from"`
	SaleTo          *time.Time          `gorm:"column:sale_to"`
	Count           int                 `gorm:"column:count;not null;default:0"`
	FreeDelivery    bool                `gorm:"column:free_delivery;not null;default:true"`
	Limited         bool                `gorm:"column:limited;not null;default:false"`
	Available       bool                `gorm:"column:available;not null;default:true"`
	Rating          float64             `gorm:"column:rating;not null;default:0"`
	Images          []Image             `gorm:"many2many:product_images"`
	Tags            []Tag               `gorm:"many2many:product_tags"`
	Specifications  []Specification     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Reviews         []Review            `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
