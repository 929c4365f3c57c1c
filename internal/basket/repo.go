package basket

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a basket repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetOrCreateBasket(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	basket, err := r.FindBasketByUser(ctx, userID)
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := models.Basket{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *repository) FindBasketByUser(ctx context.Context, userID uuid.UUID) (*models.Basket, error) {
	var basket models.Basket
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *repository) FindLine(ctx context.Context, basketID, productID uuid.UUID) (*models.BasketItem, error) {
	var line models.BasketItem
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND product_id = ?", basketID, productID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) CreateLine(ctx context.Context, line *models.BasketItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.BasketItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

func (r *repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", lineID).
		Delete(&models.BasketItem{}).Error
}

func (r *repository) ListLines(ctx context.Context, basketID uuid.UUID) ([]models.BasketItem, error) {
	var lines []models.BasketItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Images").
		Preload("Product.Tags").
		Preload("Product.Reviews").
		Where("basket_id = ?", basketID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock reserves qty units with a guarded single-statement update so
// the counter can never go negative, even under concurrent adds.
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND count >= ?", productID, qty).
		Update("count", gorm.Expr("count - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) IncrementStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("count", gorm.Expr("count + ?", qty)).Error
}
