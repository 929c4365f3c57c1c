package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
	"github.com/megano/shop-backend/pkg/enums"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order workflow operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	Finalize(ctx context.Context, userID, orderID uuid.UUID, input FinalizeInput) (uuid.UUID, error)
	ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID, details PaymentDetails) error
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error)
	List(ctx context.Context, userID uuid.UUID) ([]OrderView, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the order workflow service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create snapshots the current basket lines into a draft order. The basket
// itself stays untouched until the order is finalized.
func (s *service) Create(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lines, err := repo.ListBasketLines(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load basket lines")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeEmptyBasket, "basket is empty")
		}

		order := models.Order{
			ID:        uuid.New(),
			UserID:    userID,
			Status:    enums.OrderStatusBeingIssued,
			TotalCost: decimal.Zero,
		}
		if err := repo.CreateOrder(ctx, &order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderLineItem, 0, len(lines))
		for _, line := range lines {
			if line.Product == nil {
				return pkgerrors.New(pkgerrors.CodeDependency, "basket line lost its product")
			}
			items = append(items, models.OrderLineItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Title:     line.Product.Title,
				Price:     line.Product.Price,
				Quantity:  line.Quantity,
			})
		}
		if err := repo.CreateLineItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "snapshot basket lines")
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return orderID, nil
}

// Finalize prices the snapshot, moves the order to awaiting_payment and
// clears the live basket, all in one transaction.
func (s *service) Finalize(ctx context.Context, userID, orderID uuid.UUID, input FinalizeInput) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	deliveryType := enums.DeliveryTypeOrdinary
	if input.DeliveryType != "" {
		parsed, err := enums.ParseDeliveryType(input.DeliveryType)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery type")
		}
		deliveryType = parsed
	}
	paymentType := enums.PaymentTypeOnline
	if input.PaymentType != "" {
		parsed, err := enums.ParsePaymentType(input.PaymentType)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type")
		}
		paymentType = parsed
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOwnedOrder(ctx, repo, userID, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusBeingIssued {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order already finalized").
				WithDetails(map[string]any{"status": order.Status})
		}

		// Total comes from the snapshot lines, never from the live basket.
		total := decimal.Zero
		for _, item := range order.Items {
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		updates := map[string]any{
			"status":        enums.OrderStatusAwaitingPayment,
			"delivery_type": deliveryType,
			"payment_type":  paymentType,
			"city":          strings.TrimSpace(input.City),
			"address":       strings.TrimSpace(input.Address),
			"total_cost":    total,
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "finalize order")
		}

		if err := repo.ClearBasket(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear basket")
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return orderID, nil
}

// ConfirmPayment validates the simulated card payload and moves the order
// into transit. No charge is performed.
func (s *service) ConfirmPayment(ctx context.Context, userID, orderID uuid.UUID, details PaymentDetails) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOwnedOrder(ctx, repo, userID, orderID)
		if err != nil {
			return err
		}
		if order.Status != enums.OrderStatusAwaitingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment").
				WithDetails(map[string]any{"status": order.Status})
		}

		if err := validatePaymentDetails(details); err != nil {
			return err
		}

		updates := map[string]any{"status": enums.OrderStatusInTransit}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOwnedOrder(ctx, s.repo, userID, orderID)
	if err != nil {
		return nil, err
	}
	view := orderView(*order)
	return &view, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]OrderView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView(order))
	}
	return views, nil
}

func (s *service) loadOwnedOrder(ctx context.Context, repo Repository, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to requester")
	}
	return order, nil
}

func validatePaymentDetails(details PaymentDetails) error {
	missing := []string{}
	if strings.TrimSpace(details.Number) == "" {
		missing = append(missing, "number")
	}
	if strings.TrimSpace(details.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(details.Month) == "" {
		missing = append(missing, "month")
	}
	if strings.TrimSpace(details.Year) == "" {
		missing = append(missing, "year")
	}
	if strings.TrimSpace(details.Code) == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeInvalidPayment, "payment fields missing").
			WithDetails(map[string]any{"missing": missing})
	}

	if !isDigits(details.Number) {
		return pkgerrors.New(pkgerrors.CodeInvalidPayment, "card number must be numeric")
	}
	month, err := strconv.Atoi(details.Month)
	if err != nil || month < 1 || month > 12 {
		return pkgerrors.New(pkgerrors.CodeInvalidPayment, "expiry month is invalid")
	}
	if _, err := strconv.Atoi(details.Year); err != nil {
		return pkgerrors.New(pkgerrors.CodeInvalidPayment, "expiry year is invalid")
	}
	if !isDigits(details.Code) || len(details.Code) < 3 {
		return pkgerrors.New(pkgerrors.CodeInvalidPayment, "security code is invalid")
	}
	return nil
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func orderView(order models.Order) OrderView {
	items := make([]LineView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineView{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	view := OrderView{
		ID:        order.ID,
		CreatedAt: order.CreatedAt,
		Status:    order.Status,
		City:      order.City,
		Address:   order.Address,
		TotalCost: order.TotalCost,
		Items:     items,
	}
	if order.DeliveryType != nil {
		view.DeliveryType = order.DeliveryType.String()
	}
	if order.PaymentType != nil {
		view.PaymentType = order.PaymentType.String()
	}
	return view
}
