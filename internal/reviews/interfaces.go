package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

// Repository defines persistence operations for reviews and the derived
// product rating.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviews(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	AverageRate(ctx context.Context, productID uuid.UUID) (float64, error)
	UpdateProductRating(ctx context.Context, productID uuid.UUID, rating float64) error
}
