package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/megano/shop-backend/api/responses"
	"github.com/megano/shop-backend/api/validators"
	"github.com/megano/shop-backend/internal/catalog"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/logger"
	"github.com/megano/shop-backend/pkg/pagination"
)

const maxFilterNameLength = 255

// CatalogList serves the filtered, sorted, paginated product listing.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CatalogSales serves products currently inside their sale window.
func CatalogSales(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Sales(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CatalogPopular serves the highest rated products for the landing page.
func CatalogPopular(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		items, err := svc.Popular(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CatalogLimited serves limited-edition products.
func CatalogLimited(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		items, err := svc.Limited(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CatalogBanners serves the landing page banners.
func CatalogBanners(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		banners, err := svc.Banners(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banners)
	}
}

// Categories serves the two-level category tree.
func Categories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// Tags serves tags, optionally scoped to a category.
func Tags(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var categoryID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			categoryID = &id
		}

		tags, err := svc.Tags(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "currentPage", 1, 1, 1_000_000)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}

func parseListInput(r *http.Request) (*catalog.ListInput, error) {
	params, err := parsePageParams(r)
	if err != nil {
		return nil, err
	}

	query := r.URL.Query()
	filters := catalog.Filters{
		Name: validators.SanitizeString(query.Get("filter[name]"), maxFilterNameLength),
	}

	if raw := strings.TrimSpace(query.Get("filter[minPrice]")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minimum price")
		}
		filters.MinPrice = &value
	}
	if raw := strings.TrimSpace(query.Get("filter[maxPrice]")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maximum price")
		}
		filters.MaxPrice = &value
	}

	freeDelivery, err := validators.ParseQueryBool(r, "filter[freeDelivery]")
	if err != nil {
		return nil, err
	}
	filters.FreeDelivery = freeDelivery

	available, err := validators.ParseQueryBool(r, "filter[available]")
	if err != nil {
		return nil, err
	}
	filters.Available = available

	if raw := strings.TrimSpace(query.Get("category")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		filters.CategoryID = &id
	}

	for _, raw := range query["tags[]"] {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tag id")
		}
		filters.TagIDs = append(filters.TagIDs, id)
	}

	return &catalog.ListInput{
		Filters:  filters,
		Sort:     strings.TrimSpace(query.Get("sort")),
		SortType: strings.TrimSpace(query.Get("sortType")),
		Page:     params,
	}, nil
}
