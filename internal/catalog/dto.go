package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/megano/shop-backend/pkg/db/models"
	"github.com/megano/shop-backend/pkg/pagination"
)

// ImageView is the public projection of a stored image.
type ImageView struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// TagView is the public projection of a tag.
type TagView struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ReviewView is the public projection of a review.
type ReviewView struct {
	Author string    `json:"author"`
	Email  string    `json:"email"`
	Text   string    `json:"text"`
	Rate   int       `json:"rate"`
	Date   time.Time `json:"date"`
}

// SpecificationView is one name/value product attribute.
type SpecificationView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ShortProduct is the list-page projection of a product.
type ShortProduct struct {
	ID           uuid.UUID        `json:"id"`
	Category     uuid.UUID        `json:"category"`
	Price        decimal.Decimal  `json:"price"`
	SalePrice    *decimal.Decimal `json:"salePrice,omitempty"`
	Count        int              `json:"count"`
	Date         time.Time        `json:"date"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	FreeDelivery bool             `json:"freeDelivery"`
	Images       []ImageView      `json:"images"`
	Tags         []TagView        `json:"tags"`
	Reviews      int              `json:"reviews"`
	Rating       float64          `json:"rating"`
}

// FullProduct is the detail-page projection of a product.
type FullProduct struct {
	ShortProduct
	FullDescription string              `json:"fullDescription"`
	Specifications  []SpecificationView `json:"specifications"`
	ReviewList      []ReviewView        `json:"reviewList"`
}

// CategoryView is one node of the category tree.
type CategoryView struct {
	ID            uuid.UUID      `json:"id"`
	Title         string         `json:"title"`
	Image         *ImageView     `json:"image,omitempty"`
	Subcategories []CategoryView `json:"subcategories"`
}

// Banner is a featured product shown on the landing page.
type Banner struct {
	ID     uuid.UUID       `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Images []ImageView     `json:"images"`
}

// Filters describe the AND-combined catalog filters. Nil pointer fields mean
// the filter was not supplied and must be omitted, not defaulted.
type Filters struct {
	Name         string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	FreeDelivery *bool
	Available    *bool
	CategoryID   *uuid.UUID
	TagIDs       []uuid.UUID
}

// ListInput carries the catalog query inputs.
type ListInput struct {
	Filters  Filters
	Sort     string
	SortType string
	Page     pagination.Params
}

// ProductPage wraps one page of short products.
type ProductPage struct {
	Items       []ShortProduct `json:"items"`
	CurrentPage int            `json:"currentPage"`
	LastPage    int            `json:"lastPage"`
}

// ShortProductFromModel builds the list projection from a loaded product row.
// Images, tags and reviews must be preloaded by the caller.
func ShortProductFromModel(p models.Product) ShortProduct {
	images := make([]ImageView, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, ImageView{Src: img.Src, Alt: img.Alt})
	}
	tags := make([]TagView, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tags = append(tags, TagView{ID: tag.ID, Name: tag.Name})
	}
	short := ShortProduct{
		ID:           p.ID,
		Category:     p.CategoryID,
		Price:        p.Price,
		Count:        p.Count,
		Date:         p.CreatedAt,
		Title:        p.Title,
		Description:  p.Description,
		FreeDelivery: p.FreeDelivery,
		Images:       images,
		Tags:         tags,
		Reviews:      len(p.Reviews),
		Rating:       p.Rating,
	}
	if p.SalePrice.Valid {
		sale := p.SalePrice.Decimal
		short.SalePrice = &sale
	}
	return short
}

// FullProductFromModel builds the detail projection from a loaded product row.
func FullProductFromModel(p models.Product) FullProduct {
	specs := make([]SpecificationView, 0, len(p.Specifications))
	for _, spec := range p.Specifications {
		specs = append(specs, SpecificationView{Name: spec.Name, Value: spec.Value})
	}
	reviews := make([]ReviewView, 0, len(p.Reviews))
	for _, review := range p.Reviews {
		reviews = append(reviews, ReviewView{
			Author: review.Author,
			Email:  review.Email,
			Text:   review.Text,
			Rate:   review.Rate,
			Date:   review.CreatedAt,
		})
	}
	return FullProduct{
		ShortProduct:    ShortProductFromModel(p),
		FullDescription: p.FullDescription,
		Specifications:  specs,
		ReviewList:      reviews,
	}
}
