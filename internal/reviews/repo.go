package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a reviews repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *repository) ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repository) AverageRate(ctx context.Context, productID uuid.UUID) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("product_id = ?", productID).
		Select("COALESCE(AVG(rate), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return avg, nil
}

func (r *repository) UpdateProductRating(ctx context.Context, productID uuid.UUID, rating float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("rating", rating).Error
}
