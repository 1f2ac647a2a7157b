package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/onestoplease/onestoplease-backend/pkg/auth"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

type fakeToucher struct {
	touched []uuid.UUID
	err     error
}

func (f *fakeToucher) TouchActivity(_ context.Context, id uuid.UUID, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.touched = append(f.touched, id)
	return nil
}

func agentRequest(agentID *uuid.UUID, role enums.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	claims := &pkgAuth.AccessTokenClaims{UserID: uuid.New(), Role: role, AgentID: agentID}
	return req.WithContext(WithClaims(req.Context(), claims))
}

func TestAgentActivityStampsAgentRequests(t *testing.T) {
	toucher := &fakeToucher{}
	agentID := uuid.New()
	handler := AgentActivity(toucher, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, agentRequest(&agentID, enums.RoleAgent))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(toucher.touched) != 1 || toucher.touched[0] != agentID {
		t.Fatalf("expected touch for %s got %v", agentID, toucher.touched)
	}
}

func TestAgentActivitySkipsNonAgents(t *testing.T) {
	toucher := &fakeToucher{}
	handler := AgentActivity(toucher, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, agentRequest(nil, enums.RoleUser))

	if len(toucher.touched) != 0 {
		t.Fatalf("expected no touches got %v", toucher.touched)
	}
}

func TestAgentActivityFailureDoesNotBlockRequest(t *testing.T) {
	toucher := &fakeToucher{err: errors.New("db down")}
	agentID := uuid.New()
	handler := AgentActivity(toucher, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, agentRequest(&agentID, enums.RoleAgent))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
