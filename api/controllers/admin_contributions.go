package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/api/responses"
	"github.com/onestoplease/onestoplease-backend/api/validators"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
)

// AdminContributionList lists contributions filtered by status.
func AdminContributionList(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contributions service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		if rawStatus == "" {
			list, listErr := svc.ListByStatus(r.Context(), enums.ContributionStatusPending, params)
			if listErr != nil {
				responses.WriteError(r.Context(), logg, w, listErr)
				return
			}
			responses.WriteSuccess(w, list)
			return
		}

		status, err := enums.ParseContributionStatus(rawStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status"))
			return
		}

		list, err := svc.ListByStatus(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type adminAssignRequest struct {
	AgentID uuid.UUID `json:"agent_id" validate:"required"`
}

// AdminContributionAssign force-assigns a pending contribution to an agent.
func AdminContributionAssign(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contributions service unavailable"))
			return
		}

		id, err := contributionIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Assign(r.Context(), contributions.AssignInput{
			ContributionID: id,
			Actor:          actorFromRequest(r),
			TargetAgentID:  &payload.AgentID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminContributionRevoke returns a rejected contribution to the queue.
func AdminContributionRevoke(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, svcRevoke)
}
