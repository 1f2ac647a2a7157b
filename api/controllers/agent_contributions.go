package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/onestoplease/onestoplease-backend/api/middleware"
	"github.com/onestoplease/onestoplease-backend/api/responses"
	"github.com/onestoplease/onestoplease-backend/api/validators"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
	"github.com/onestoplease/onestoplease-backend/internal/sessions"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
)

// AgentContributionQueue lists unassigned pending contributions.
func AgentContributionQueue(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListQueue(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AgentContributionAssigned lists contributions assigned to the caller.
func AgentContributionAssigned(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contributions service unavailable"))
			return
		}

		agentID := middleware.AgentIDFromContext(r.Context())
		if agentID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "agent context missing"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAssigned(r.Context(), *agentID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// AgentContributionAssign self-assigns a pending contribution to the caller.
func AgentContributionAssign(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
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

		dto, err := svc.Assign(r.Context(), contributions.AssignInput{
			ContributionID: id,
			Actor:          actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AgentContributionUnassign returns an assigned contribution to the queue.
func AgentContributionUnassign(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, svcUnassign)
}

// AgentContributionApprove approves an assigned contribution.
func AgentContributionApprove(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, svcApprove)
}

type rejectContributionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AgentContributionReject rejects an assigned contribution with a reason.
func AgentContributionReject(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload rejectContributionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason, err := enums.ParseRejectionReason(strings.TrimSpace(payload.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid rejection reason"))
			return
		}

		dto, err := svc.Reject(r.Context(), contributions.RejectInput{
			ContributionID: id,
			Actor:          actorFromRequest(r),
			Reason:         reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AgentAttendanceReport returns the caller's own login session report.
func AgentAttendanceReport(svc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		agentID := middleware.AgentIDFromContext(r.Context())
		if agentID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "agent context missing"))
			return
		}

		from, to, err := attendanceWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Report(r.Context(), *agentID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// attendanceWindow reads the from/to query dates. The window defaults to the
// trailing seven days and to is exclusive at end of day.
func attendanceWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	defaultFrom := now.AddDate(0, 0, -7).Truncate(24 * time.Hour)

	from, err := validators.ParseQueryDate(r, "from", defaultFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := validators.ParseQueryDate(r, "to", now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.Equal(now) {
		to = to.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	return from, to, nil
}

type transitionFunc func(contributions.Service, *http.Request, contributions.TransitionInput) (*contributions.ContributionDTO, error)

func svcUnassign(svc contributions.Service, r *http.Request, input contributions.TransitionInput) (*contributions.ContributionDTO, error) {
	return svc.Unassign(r.Context(), input)
}

func svcApprove(svc contributions.Service, r *http.Request, input contributions.TransitionInput) (*contributions.ContributionDTO, error) {
	return svc.Approve(r.Context(), input)
}

func svcRevoke(svc contributions.Service, r *http.Request, input contributions.TransitionInput) (*contributions.ContributionDTO, error) {
	return svc.Revoke(r.Context(), input)
}

func transitionHandler(svc contributions.Service, logg *logger.Logger, apply transitionFunc) http.HandlerFunc {
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

		dto, err := apply(svc, r, contributions.TransitionInput{
			ContributionID: id,
			Actor:          actorFromRequest(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
