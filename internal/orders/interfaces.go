package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and their snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListBasketLines(ctx context.Context, userID uuid.UUID) ([]models.BasketItem, error)
	ClearBasket(ctx context.Context, userID uuid.UUID) error
}
