package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/florista/bouquet-bff/api/middleware"
	"github.com/florista/bouquet-bff/api/responses"
	"github.com/florista/bouquet-bff/api/validators"
	"github.com/florista/bouquet-bff/internal/cart"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

func cartUnavailable(svc cart.Service, w http.ResponseWriter, r *http.Request, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
	return true
}

func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cartUnavailable(svc, w, r, logg) {
			return
		}
		result, err := svc.Get(r.Context(), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cartUnavailable(svc, w, r, logg) {
			return
		}
		var body cart.AddItemInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AddItem(r.Context(), body, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cartUnavailable(svc, w, r, logg) {
			return
		}
		var body cart.UpdateItemInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), body, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cartUnavailable(svc, w, r, logg) {
			return
		}
		result, err := svc.RemoveItem(r.Context(), chi.URLParam(r, "itemID"), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
