package controllers

import (
	"net/http"

	"github.com/onestoplease/onestoplease-backend/api/responses"
	"github.com/onestoplease/onestoplease-backend/api/validators"
	"github.com/onestoplease/onestoplease-backend/internal/admins"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
)

// AdminAdminList returns the admin directory.
func AdminAdminList(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admins service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AdminAdminCreate provisions an admin account with a one-time password.
func AdminAdminCreate(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admins service unavailable"))
			return
		}

		var payload admins.CreateAdminInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}
