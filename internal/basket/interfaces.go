package basket

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

// Repository defines persistence operations for baskets and stock counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreateBasket(ctx context.Context, userID uuid.UUID) (*models.Basket, error)
	FindBasketByUser(ctx context.Context, userID uuid.UUID) (*models.Basket, error)
	FindLine(ctx context.Context, basketID, productID uuid.UUID) (*models.BasketItem, error)
	CreateLine(ctx context.Context, line *models.BasketItem) error
	UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, lineID uuid.UUID) error
	ListLines(ctx context.Context, basketID uuid.UUID) ([]models.BasketItem, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error
}
