package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/onestoplease/onestoplease-backend/api/middleware"
	"github.com/onestoplease/onestoplease-backend/api/responses"
	"github.com/onestoplease/onestoplease-backend/api/validators"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

type createContributionRequest struct {
	ContactName      string            `json:"contact_name" validate:"required"`
	ContactPhone     string            `json:"contact_phone" validate:"required"`
	Address          string            `json:"address" validate:"required"`
	Landmark         *string           `json:"landmark"`
	LocationLink     *string           `json:"location_link"`
	Pincode          string            `json:"pincode" validate:"required"`
	ProductName      string            `json:"product_name" validate:"required"`
	Description      *string           `json:"description"`
	ContributionType string            `json:"contribution_type" validate:"required"`
	ImageURLs        []string          `json:"image_urls"`
	BillURL          *string           `json:"bill_url"`
	Attributes       map[string]string `json:"attributes"`
	ExpectedPrice    *string           `json:"expected_price"`
	WarrantyCovered  bool              `json:"warranty_covered"`
	WarrantyStart    *time.Time        `json:"warranty_start"`
	WarrantyEnd      *time.Time        `json:"warranty_end"`
}

func (req createContributionRequest) toInput(userID uuid.UUID, email string) (contributions.CreateContributionInput, error) {
	kind, err := enums.ParseContributionType(strings.TrimSpace(req.ContributionType))
	if err != nil {
		return contributions.CreateContributionInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid contribution_type")
	}

	var price *decimal.Decimal
	if req.ExpectedPrice != nil && strings.TrimSpace(*req.ExpectedPrice) != "" {
		parsed, parseErr := decimal.NewFromString(strings.TrimSpace(*req.ExpectedPrice))
		if parseErr != nil {
			return contributions.CreateContributionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid expected_price")
		}
		price = &parsed
	}

	return contributions.CreateContributionInput{
		UserID:           userID,
		ActorEmail:       email,
		ContactName:      req.ContactName,
		ContactPhone:     req.ContactPhone,
		Address:          req.Address,
		Landmark:         req.Landmark,
		LocationLink:     req.LocationLink,
		Pincode:          req.Pincode,
		ProductName:      req.ProductName,
		Description:      req.Description,
		ContributionType: kind,
		ImageURLs:        req.ImageURLs,
		BillURL:          req.BillURL,
		Attributes:       req.Attributes,
		ExpectedPrice:    price,
		WarrantyCovered:  req.WarrantyCovered,
		WarrantyStart:    req.WarrantyStart,
		WarrantyEnd:      req.WarrantyEnd,
	}, nil
}

// ContributionCreate handles a contributor submitting a new item.
func ContributionCreate(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contributions service unavailable"))
			return
		}

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createContributionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(claims.UserID, claims.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ContributionListMine returns the caller's own submissions.
func ContributionListMine(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
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

		list, err := svc.ListOwn(r.Context(), middleware.UserIDFromContext(r.Context()), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ContributionGet returns one contribution, subject to actor visibility.
func ContributionGet(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
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

		dto, err := svc.Get(r.Context(), id, actorFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ContributionDelete removes the caller's own pending submission.
func ContributionDelete(svc contributions.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), id, actorFromRequest(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func contributionIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "contributionId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "contribution id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid contribution id")
	}
	return id, nil
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
