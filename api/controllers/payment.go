package controllers

import (
	"net/http"

	"github.com/megano/shop-backend/api/responses"
	"github.com/megano/shop-backend/api/validators"
	ordersvc "github.com/megano/shop-backend/internal/orders"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/logger"
)

// Missing card fields are deliberately not rejected here: the order service
// classifies them as a payment failure, which the wire contract surfaces as
// 500, not 400.
type paymentRequest struct {
	Number string `json:"number" validate:"max=19"`
	Name   string `json:"name" validate:"max=255"`
	Month  string `json:"month" validate:"max=2"`
	Year   string `json:"year" validate:"max=4"`
	Code   string `json:"code" validate:"max=4"`
}

// PaymentConfirm validates the simulated card payload and settles the order.
func PaymentConfirm(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload paymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err = svc.ConfirmPayment(r.Context(), userID, orderID, ordersvc.PaymentDetails{
			Number: payload.Number,
			Name:   payload.Name,
			Month:  payload.Month,
			Year:   payload.Year,
			Code:   payload.Code,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
