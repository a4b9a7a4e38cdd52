package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/florista/bouquet-bff/api/middleware"
	"github.com/florista/bouquet-bff/api/responses"
	"github.com/florista/bouquet-bff/api/validators"
	"github.com/florista/bouquet-bff/internal/catalog"
	"github.com/florista/bouquet-bff/pkg/enums"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

func catalogUnavailable(svc catalog.Service, w http.ResponseWriter, r *http.Request, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
	return true
}

// CatalogListProducts serves the storefront product grid.
func CatalogListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}

		page, limit, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := catalog.ProductQuery{
			Search:   validators.QueryString(r, "search", 100),
			Category: validators.QueryString(r, "category", 64),
			Sort:     validators.QueryString(r, "sort", 32),
			Page:     page,
			Limit:    limit,
		}
		if raw := validators.QueryString(r, "availability", 16); raw != "" {
			availability, err := enums.ParseAvailability(strings.ToUpper(raw))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid availability"))
				return
			}
			query.Availability = availability
		}

		list, err := svc.ListProducts(r.Context(), query, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CatalogGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}
		product, err := svc.GetProduct(r.Context(), chi.URLParam(r, "productID"), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func CatalogCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}
		categories, err := svc.ListCategories(r.Context(), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// CatalogPopular lists products ranked by their upstream SAW score.
func CatalogPopular(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		popular, err := svc.PopularProducts(r.Context(), limit, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, popular)
	}
}

// CatalogRecommendations serves both "similar to this product" (when the
// route carries a product id) and personal recommendations.
func CatalogRecommendations(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 8, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := catalog.RecommendationQuery{
			ProductID: chi.URLParam(r, "productID"),
			Limit:     limit,
		}
		if query.ProductID == "" {
			query.ProductID = validators.QueryString(r, "product_id", 64)
		}
		recs, err := svc.Recommendations(r.Context(), query, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recs)
	}
}

func CatalogDiscounts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}
		discounts, err := svc.ActiveDiscounts(r.Context(), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discounts)
	}
}
