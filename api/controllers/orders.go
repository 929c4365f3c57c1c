package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/megano/shop-backend/api/responses"
	"github.com/megano/shop-backend/api/validators"
	ordersvc "github.com/megano/shop-backend/internal/orders"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/logger"
)

type orderCreatedResponse struct {
	OrderID uuid.UUID `json:"orderId"`
}

type finalizeOrderRequest struct {
	DeliveryType string `json:"deliveryType" validate:"omitempty,oneof=ordinary express"`
	PaymentType  string `json:"paymentType" validate:"omitempty,oneof=online someone"`
	City         string `json:"city" validate:"required,max=255"`
	Address      string `json:"address" validate:"required,max=512"`
}

// OrdersList serves the order history, newest first.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

// OrderCreate snapshots the basket into a draft order.
func OrderCreate(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := svc.Create(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderCreatedResponse{OrderID: orderID})
	}
}

// OrderDetail serves one order with its snapshot lines.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderFinalize prices the draft and moves it to awaiting payment.
func OrderFinalize(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload finalizeOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		confirmedID, err := svc.Finalize(r.Context(), userID, orderID, ordersvc.FinalizeInput{
			DeliveryType: payload.DeliveryType,
			PaymentType:  payload.PaymentType,
			City:         payload.City,
			Address:      payload.Address,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderCreatedResponse{OrderID: confirmedID})
	}
}
