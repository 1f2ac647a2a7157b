package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/api/responses"
	"github.com/onestoplease/onestoplease-backend/api/validators"
	"github.com/onestoplease/onestoplease-backend/internal/auditlog"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
)

// AdminAuditLogs lists audit entries, optionally filtered by contribution
// or actor.
func AdminAuditLogs(svc auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contributionID, err := validators.ParseQueryUUID(r, "contribution_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := validators.ParseQueryUUID(r, "actor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if contributionID != uuid.Nil && actorID != uuid.Nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "contribution_id and actor_id are mutually exclusive"))
			return
		}

		var list *auditlog.EntryList
		switch {
		case contributionID != uuid.Nil:
			list, err = svc.ListByContribution(r.Context(), contributionID, params)
		case actorID != uuid.Nil:
			list, err = svc.ListByActor(r.Context(), actorID, params)
		default:
			list, err = svc.List(r.Context(), params)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
