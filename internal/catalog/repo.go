package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
	"github.com/megano/shop-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

var sortColumns = map[string]string{
	"date":    "created_at",
	"price":   "price",
	"rating":  "rating",
	"title":   "title",
	"reviews": "(SELECT COUNT(*) FROM reviews WHERE reviews.product_id = products.id)",
}

func (r *repository) ListProducts(ctx context.Context, input ListInput) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	query = applyFilters(query, input.Filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[input.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if input.SortType == "dec" {
		direction = "DESC"
	}

	params := pagination.Normalize(input.Page)
	var products []models.Product
	err := query.
		Preload("Images").
		Preload("Tags").
		Preload("Reviews").
		Order(column + " " + direction).
		Limit(params.Limit).
		Offset(pagination.Offset(params)).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if name := strings.TrimSpace(filters.Name); name != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filters.MinPrice != nil {
		query = query.Where("price >= ?", filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("price <= ?", filters.MaxPrice)
	}
	if filters.FreeDelivery != nil {
		query = query.Where("free_delivery = ?", *filters.FreeDelivery)
	}
	if filters.Available != nil {
		query = query.Where("available = ?", *filters.Available)
	}
	if filters.CategoryID != nil {
		query = query.Where(
			"category_id = ? OR category_id IN (SELECT id FROM categories WHERE parent_id = ?)",
			filters.CategoryID, filters.CategoryID,
		)
	}
	if len(filters.TagIDs) > 0 {
		query = query.Where(
			"id IN (SELECT product_id FROM product_tags WHERE tag_id IN ?)",
			filters.TagIDs,
		)
	}
	return query
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Tags").
		Preload("Specifications").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListSales(ctx context.Context, params pagination.Params, now time.Time) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("sale_price IS NOT NULL").
		Where("sale_from IS NULL OR sale_from <= ?", now).
		Where("sale_to IS NULL OR sale_to >= ?", now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params = pagination.Normalize(params)
	var products []models.Product
	err := query.
		Preload("Images").
		Preload("Tags").
		Preload("Reviews").
		Order("sale_to ASC").
		Limit(params.Limit).
		Offset(pagination.Offset(params)).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) ListPopular(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Tags").
		Preload("Reviews").
		Where("available = ?", true).
		Order("rating DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListLimited(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Tags").
		Preload("Reviews").
		Where("limited = ?", true).
		Where("available = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListBanners(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Where("available = ?", true).
		Order("rating DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Preload("Image").
		Preload("Subcategories").
		Preload("Subcategories.Image").
		Where("parent_id IS NULL").
		Order("title ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) ListTags(ctx context.Context, categoryID *uuid.UUID) ([]models.Tag, error) {
	query := r.db.WithContext(ctx).Model(&models.Tag{})
	if categoryID != nil {
		query = query.Where(
			"id IN (SELECT tag_id FROM category_tags WHERE category_id = ?)",
			categoryID,
		)
	}
	var tags []models.Tag
	if err := query.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
