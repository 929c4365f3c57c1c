package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
	"github.com/megano/shop-backend/pkg/pagination"
)

// Repository defines the catalog read paths.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListProducts(ctx context.Context, input ListInput) ([]models.Product, int64, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListSales(ctx context.Context, params pagination.Params, now time.Time) ([]models.Product, int64, error)
	ListPopular(ctx context.Context, limit int) ([]models.Product, error)
	ListLimited(ctx context.Context, limit int) ([]models.Product, error)
	ListBanners(ctx context.Context, limit int) ([]models.Product, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListTags(ctx context.Context, categoryID *uuid.UUID) ([]models.Tag, error)
}
