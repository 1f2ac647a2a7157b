package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/api/middleware"
	"github.com/onestoplease/onestoplease-backend/internal/contributions"
	pkgAuth "github.com/onestoplease/onestoplease-backend/pkg/auth"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

type testContributionsService struct {
	createFn       func(ctx context.Context, input contributions.CreateContributionInput) (*contributions.ContributionDTO, error)
	getFn          func(ctx context.Context, id uuid.UUID, actor contributions.Actor) (*contributions.ContributionDTO, error)
	listOwnFn      func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*contributions.ContributionList, error)
	listQueueFn    func(ctx context.Context, params pagination.Params) (*contributions.ContributionList, error)
	listAssignedFn func(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*contributions.ContributionList, error)
	listByStatusFn func(ctx context.Context, status enums.ContributionStatus, params pagination.Params) (*contributions.ContributionList, error)
	assignFn       func(ctx context.Context, input contributions.AssignInput) (*contributions.ContributionDTO, error)
	unassignFn     func(ctx context.Context, input contributions.TransitionInput) (*contributions.ContributionDTO, error)
	approveFn      func(ctx context.Context, input contributions.TransitionInput) (*contributions.ContributionDTO, error)
	rejectFn       func(ctx context.Context, input contributions.RejectInput) (*contributions.ContributionDTO, error)
	revokeFn       func(ctx context.Context, input contributions.TransitionInput) (*contributions.ContributionDTO, error)
	deleteFn       func(ctx context.Context, id uuid.UUID, actor contributions.Actor) error
}

func (s *testContributionsService) Create(ctx context.Context, input contributions.CreateContributionInput) (*contributions.ContributionDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) Get(ctx context.Context, id uuid.UUID, actor contributions.Actor) (*contributions.ContributionDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id, actor)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) ListOwn(ctx context.Context, userID uuid.UUID, params pagination.Params) (*contributions.ContributionList, error) {
	if s.listOwnFn != nil {
		return s.listOwnFn(ctx, userID, params)
	}
	return &contributions.ContributionList{}, nil
}

func (s *testContributionsService) ListQueue(ctx context.Context, params pagination.Params) (*contributions.ContributionList, error) {
	if s.listQueueFn != nil {
		return s.listQueueFn(ctx, params)
	}
	return &contributions.ContributionList{}, nil
}

func (s *testContributionsService) ListAssigned(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*contributions.ContributionList, error) {
	if s.listAssignedFn != nil {
		return s.listAssignedFn(ctx, agentID, params)
	}
	return &contributions.ContributionList{}, nil
}

func (s *testContributionsService) ListByStatus(ctx context.Context, status enums.ContributionStatus, params pagination.Params) (*contributions.ContributionList, error) {
	if s.listByStatusFn != nil {
		return s.listByStatusFn(ctx, status, params)
	}
	return &contributions.ContributionList{}, nil
}

func (s *testContributionsService) Assign(ctx context.Context, input contributions.AssignInput) (*contributions.ContributionDTO, error) {
	if s.assignFn != nil {
		return s.assignFn(ctx, input)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) Unassign(ctx context.Context, input contributions.TransitionInput) (*contributions.ContributionDTO, error) {
	if s.unassignFn != nil {
		return s.unassignFn(ctx, input)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) Approve(ctx context.Context, input contributions.TransitionInput) (*contributions.ContributionDTO, error) {
	if s.approveFn != nil {
		return s.approveFn(ctx, input)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) Reject(ctx context.Context, input contributions.RejectInput) (*contributions.ContributionDTO, error) {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, input)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) Revoke(ctx context.Context, input contributions.TransitionInput) (*contributions.ContributionDTO, error) {
	if s.revokeFn != nil {
		return s.revokeFn(ctx, input)
	}
	return &contributions.ContributionDTO{}, nil
}

func (s *testContributionsService) Delete(ctx context.Context, id uuid.UUID, actor contributions.Actor) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, id, actor)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withClaims(req *http.Request, role enums.Role, agentID *uuid.UUID) (*http.Request, uuid.UUID) {
	userID := uuid.New()
	claims := &pkgAuth.AccessTokenClaims{
		UserID:  userID,
		Email:   "actor@example.com",
		Role:    role,
		AgentID: agentID,
	}
	return req.WithContext(middleware.WithClaims(req.Context(), claims)), userID
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestContributionCreateRequiresAuthContext(t *testing.T) {
	svc := &testContributionsService{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()

	ContributionCreate(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestContributionCreateSubmits(t *testing.T) {
	var captured contributions.CreateContributionInput
	svc := &testContributionsService{
		createFn: func(ctx context.Context, input contributions.CreateContributionInput) (*contributions.ContributionDTO, error) {
			captured = input
			return &contributions.ContributionDTO{ID: uuid.New(), Status: enums.ContributionStatusPending}, nil
		},
	}

	body := `{
		"contact_name": "Asha Verma",
		"contact_phone": "9876543210",
		"address": "12 MG Road",
		"pincode": "560001",
		"product_name": "Washing machine",
		"contribution_type": "rent",
		"attributes": {"brand": "LG"},
		"expected_price": "1500.50"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body))
	req, userID := withClaims(req, enums.RoleUser, nil)
	resp := httptest.NewRecorder()

	ContributionCreate(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if captured.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, captured.UserID)
	}
	if captured.ActorEmail != "actor@example.com" {
		t.Fatalf("unexpected actor email %s", captured.ActorEmail)
	}
	if captured.ContributionType != enums.ContributionTypeRent {
		t.Fatalf("unexpected type %s", captured.ContributionType)
	}
	if captured.ExpectedPrice == nil || captured.ExpectedPrice.String() != "1500.5" {
		t.Fatalf("unexpected price %v", captured.ExpectedPrice)
	}
}

func TestContributionCreateRejectsUnknownType(t *testing.T) {
	svc := &testContributionsService{}
	body := `{
		"contact_name": "Asha Verma",
		"contact_phone": "9876543210",
		"address": "12 MG Road",
		"pincode": "560001",
		"product_name": "Washing machine",
		"contribution_type": "lease-to-own"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contributions", strings.NewReader(body))
	req, _ = withClaims(req, enums.RoleUser, nil)
	resp := httptest.NewRecorder()

	ContributionCreate(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestContributionGetRejectsMalformedID(t *testing.T) {
	svc := &testContributionsService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contributions/not-a-uuid", nil)
	req, _ = withClaims(req, enums.RoleUser, nil)
	req = withURLParam(req, "contributionId", "not-a-uuid")
	resp := httptest.NewRecorder()

	ContributionGet(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestContributionDeletePassesOwner(t *testing.T) {
	contributionID := uuid.New()
	var captured contributions.Actor
	svc := &testContributionsService{
		deleteFn: func(ctx context.Context, id uuid.UUID, actor contributions.Actor) error {
			if id != contributionID {
				t.Fatalf("unexpected id %s", id)
			}
			captured = actor
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contributions/"+contributionID.String(), nil)
	req, userID := withClaims(req, enums.RoleUser, nil)
	req = withURLParam(req, "contributionId", contributionID.String())
	resp := httptest.NewRecorder()

	ContributionDelete(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.UserID != userID {
		t.Fatalf("expected actor %s got %s", userID, captured.UserID)
	}
}

func TestContributionDeleteMapsStateConflict(t *testing.T) {
	contributionID := uuid.New()
	svc := &testContributionsService{
		deleteFn: func(ctx context.Context, id uuid.UUID, actor contributions.Actor) error {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "contribution is not pending")
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/contributions/"+contributionID.String(), nil)
	req, _ = withClaims(req, enums.RoleUser, nil)
	req = withURLParam(req, "contributionId", contributionID.String())
	resp := httptest.NewRecorder()

	ContributionDelete(svc, testLogger()).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse error response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}
