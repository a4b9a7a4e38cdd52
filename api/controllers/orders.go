package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/florista/bouquet-bff/api/middleware"
	"github.com/florista/bouquet-bff/api/responses"
	"github.com/florista/bouquet-bff/api/validators"
	"github.com/florista/bouquet-bff/internal/orders"
	"github.com/florista/bouquet-bff/pkg/enums"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

func ordersUnavailable(svc orders.Service, w http.ResponseWriter, r *http.Request, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
	return true
}

// OrdersList returns the caller's order history, optionally filtered by status.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersUnavailable(svc, w, r, logg) {
			return
		}
		page, limit, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := orders.ListQuery{Page: page, Limit: limit}
		if raw := strings.ToLower(validators.QueryString(r, "status", 32)); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			query.Status = status
		}

		list, err := svc.List(r.Context(), query, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OrdersGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersUnavailable(svc, w, r, logg) {
			return
		}
		order, err := svc.Get(r.Context(), chi.URLParam(r, "orderID"), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersUnavailable(svc, w, r, logg) {
			return
		}
		order, err := svc.Cancel(r.Context(), chi.URLParam(r, "orderID"), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PickupOptions lists every hourly slot for ?date= (default: earliest
// possible date) with the reason each disabled slot cannot be chosen.
func PickupOptions(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersUnavailable(svc, w, r, logg) {
			return
		}
		result, err := svc.PickupOptions(r.Context(), validators.QueryString(r, "date", 10), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func PickupValidate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersUnavailable(svc, w, r, logg) {
			return
		}
		date := validators.QueryString(r, "date", 10)
		hhmm := validators.QueryString(r, "time", 5)
		if date == "" || hhmm == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date and time are required"))
			return
		}
		result, err := svc.ValidatePickup(r.Context(), date, hhmm, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Checkout places the order after re-validating the pickup slot server side.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ordersUnavailable(svc, w, r, logg) {
			return
		}
		var body orders.CheckoutInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Checkout(r.Context(), body, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
