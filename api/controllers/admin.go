package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/florista/bouquet-bff/api/middleware"
	"github.com/florista/bouquet-bff/api/responses"
	"github.com/florista/bouquet-bff/api/validators"
	"github.com/florista/bouquet-bff/internal/admin"
	"github.com/florista/bouquet-bff/internal/catalog"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

type adminOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func adminUnavailable(svc admin.Service, w http.ResponseWriter, r *http.Request, logg *logger.Logger) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
	return true
}

func AdminResources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, admin.Resources())
	}
}

// AdminList proxies the dashboard list views; query parameters pass through.
func AdminList(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminUnavailable(svc, w, r, logg) {
			return
		}
		list, err := svc.List(r.Context(), chi.URLParam(r, "resource"), r.URL.Query(), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminGet(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminUnavailable(svc, w, r, logg) {
			return
		}
		item, err := svc.Get(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"), middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func AdminCreate(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminUnavailable(svc, w, r, logg) {
			return
		}
		body, err := validators.DecodeJSONObject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Create(r.Context(), chi.URLParam(r, "resource"), body, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func AdminUpdate(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminUnavailable(svc, w, r, logg) {
			return
		}
		body, err := validators.DecodeJSONObject(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Update(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"), body, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func AdminDelete(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminUnavailable(svc, w, r, logg) {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "resource"), chi.URLParam(r, "id"), middleware.CredentialsFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func AdminUpdateOrderStatus(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if adminUnavailable(svc, w, r, logg) {
			return
		}
		var body adminOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdateOrderStatus(r.Context(), chi.URLParam(r, "orderID"), body.Status, middleware.CredentialsFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminPurgeCache drops cached catalog reads for one resource.
func AdminPurgeCache(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalogUnavailable(svc, w, r, logg) {
			return
		}
		resource := chi.URLParam(r, "resource")
		if err := svc.Invalidate(r.Context(), resource); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "purged", "resource": resource})
	}
}
