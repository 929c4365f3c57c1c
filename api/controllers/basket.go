package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/megano/shop-backend/api/responses"
	"github.com/megano/shop-backend/api/validators"
	basketsvc "github.com/megano/shop-backend/internal/basket"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/logger"
)

type basketItemRequest struct {
	ID    uuid.UUID `json:"id" validate:"required"`
	Count int       `json:"count" validate:"required,min=1"`
}

// BasketGet serves the current basket contents.
func BasketGet(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// BasketAdd reserves stock and adds the product to the basket.
func BasketAdd(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload basketItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.Add(r.Context(), userID, payload.ID, payload.Count)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}

// BasketRemove returns stock and removes quantity from the basket.
func BasketRemove(svc basketsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "basket service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload basketItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines, err := svc.Remove(r.Context(), userID, payload.ID, payload.Count)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lines)
	}
}
