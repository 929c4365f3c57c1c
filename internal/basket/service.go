package basket

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/internal/catalog"
	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Line is one basket entry resolved to its product projection.
type Line struct {
	catalog.ShortProduct
	Count int `json:"count"`
}

// Service defines the basket engine operations.
type Service interface {
	Add(ctx context.Context, userID, productID uuid.UUID, qty int) ([]Line, error)
	Remove(ctx context.Context, userID, productID uuid.UUID, qty int) ([]Line, error)
	Get(ctx context.Context, userID uuid.UUID) ([]Line, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the basket service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Add reserves stock and folds the quantity into the user's basket line. The
// stock decrement and the line upsert commit or roll back together.
func (s *service) Add(ctx context.Context, userID, productID uuid.UUID, qty int) ([]Line, error) {
	if err := validateLineInput(userID, productID, qty); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		reserved, err := repo.DecrementStock(ctx, productID, qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
		}
		if !reserved {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{"productId": productID, "available": product.Count})
		}

		basket, err := repo.GetOrCreateBasket(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}

		line, err := repo.FindLine(ctx, basket.ID, productID)
		switch {
		case err == nil:
			if err := repo.UpdateLineQuantity(ctx, line.ID, line.Quantity+qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket line")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := &models.BasketItem{
				ID:        uuid.New(),
				BasketID:  basket.ID,
				ProductID: productID,
				Quantity:  qty,
			}
			if err := repo.CreateLine(ctx, created); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create basket line")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Remove gives reserved stock back and shrinks or deletes the basket line.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID, qty int) ([]Line, error) {
	if err := validateLineInput(userID, productID, qty); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		basket, err := repo.FindBasketByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotInCart, "product is not in the basket")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
		}

		line, err := repo.FindLine(ctx, basket.ID, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotInCart, "product is not in the basket")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket line")
		}

		remaining := line.Quantity - qty
		if remaining > 0 {
			if err := repo.UpdateLineQuantity(ctx, line.ID, remaining); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update basket line")
			}
			if err := repo.IncrementStock(ctx, productID, qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
			}
			return nil
		}

		// Removing at least the full line quantity: drop the line and give
		// back everything it still held.
		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete basket line")
		}
		if err := repo.IncrementStock(ctx, productID, line.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Get returns the basket lines in insertion order.
func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	basket, err := s.repo.FindBasketByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []Line{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket")
	}

	items, err := s.repo.ListLines(ctx, basket.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list basket lines")
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		lines = append(lines, Line{
			ShortProduct: catalog.ShortProductFromModel(*item.Product),
			Count:        item.Quantity,
		})
	}
	return lines, nil
}

func validateLineInput(userID, productID uuid.UUID, qty int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "count must be at least 1")
	}
	return nil
}
