package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/internal/agents"
	pkgAuth "github.com/onestoplease/onestoplease-backend/pkg/auth"
	"github.com/onestoplease/onestoplease-backend/pkg/auth/session"
	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "onestoplease",
		ExpirationMinutes: 30,
	}
}

func TestLoginDefaultsToUserRole(t *testing.T) {
	password := "contributor-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "renter@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Rian",
		IsActive:     true,
	}
	setup := newAuthTestSetup(t, user, nil)

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "  Renter@Example.com ",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleUser {
		t.Fatalf("expected user role claim, got %s", claims.Role)
	}
	if claims.AgentID != nil {
		t.Fatalf("contributor tokens must not carry an agent id")
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected refresh token to be set")
	}
	if resp.Agent != nil {
		t.Fatalf("expected no agent profile for contributor")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be stamped")
	}
}

func TestLoginAgentOpensSessionAndSetsPresence(t *testing.T) {
	password := "agent-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "agent@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Sam",
		IsActive:     true,
		SystemRole:   strPtr("agent"),
	}
	agent := &agents.AgentDTO{
		ID:     uuid.New(),
		UserID: user.ID,
		Name:   "Sam",
		Email:  user.Email,
	}
	setup := newAuthTestSetup(t, user, agent)

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleAgent {
		t.Fatalf("expected agent role claim, got %s", claims.Role)
	}
	if claims.AgentID == nil || *claims.AgentID != agent.ID {
		t.Fatalf("expected agent id claim %s, got %v", agent.ID, claims.AgentID)
	}
	if len(setup.attendance.started) != 1 || setup.attendance.started[0] != agent.ID {
		t.Fatalf("expected login session opened for agent, got %v", setup.attendance.started)
	}
	if got, ok := setup.presence.states[agent.ID]; !ok || !got {
		t.Fatalf("expected presence flag set for agent")
	}
	if resp.Agent == nil || resp.Agent.ID != agent.ID {
		t.Fatalf("expected agent profile in response")
	}
}

func TestLoginAgentRoleWithoutDirectoryRowRejected(t *testing.T) {
	password := "orphan-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "orphan@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
		SystemRole:   strPtr("agent"),
	}
	setup := newAuthTestSetup(t, user, nil)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginWrongPasswordUniformMessage(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "renter@example.com",
		PasswordHash: mustHashPassword(t, "right-password"),
		IsActive:     true,
	}
	setup := newAuthTestSetup(t, user, nil)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	typed := requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
	if typed.Error() != invalidCredentialsMessage {
		t.Fatalf("expected uniform credentials message, got %q", typed.Error())
	}
}

func TestLoginInactiveUserRejected(t *testing.T) {
	password := "inactive-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "inactive@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     false,
	}
	setup := newAuthTestSetup(t, user, nil)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAdminLoginRequiresAdminRole(t *testing.T) {
	password := "not-admin"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "renter@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}
	setup := newAuthTestSetup(t, user, nil)

	_, err := setup.service.AdminLogin(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestAdminLoginMintsAdminClaims(t *testing.T) {
	password := "admin-secret"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
		SystemRole:   strPtr("admin"),
	}
	setup := newAuthTestSetup(t, user, nil)

	resp, err := setup.service.AdminLogin(context.Background(), LoginRequest{
		Email:    user.Email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.RoleAdmin {
		t.Fatalf("expected admin role claim, got %s", claims.Role)
	}
}

func TestRefreshRotatesSessionAndRemints(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "agent@example.com",
		PasswordHash: mustHashPassword(t, "x"),
		IsActive:     true,
	}
	setup := newAuthTestSetup(t, user, nil)

	agentID := uuid.New()
	oldAccessID := session.NewAccessID()
	expired, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    enums.RoleAgent,
		AgentID: &agentID,
		JTI:     oldAccessID,
	})
	if err != nil {
		t.Fatalf("mint expired token: %v", err)
	}

	setup.session.rotateAccessID = "rotated-access-id"
	setup.session.rotateRefresh = "rotated-refresh"

	resp, err := setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  expired,
		RefreshToken: "provided-refresh",
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if setup.session.rotatedFrom != oldAccessID {
		t.Fatalf("expected rotation keyed by old jti %s, got %s", oldAccessID, setup.session.rotatedFrom)
	}
	if resp.RefreshToken != "rotated-refresh" {
		t.Fatalf("expected rotated refresh token, got %q", resp.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access token: %v", err)
	}
	if claims.ID != "rotated-access-id" {
		t.Fatalf("expected new jti, got %s", claims.ID)
	}
	if claims.Role != enums.RoleAgent || claims.AgentID == nil || *claims.AgentID != agentID {
		t.Fatalf("expected identity claims carried across rotation")
	}
}

func TestRefreshRejectsInvalidRefreshToken(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "renter@example.com",
		PasswordHash: mustHashPassword(t, "x"),
		IsActive:     true,
	}
	setup := newAuthTestSetup(t, user, nil)
	setup.session.rotateErr = session.ErrInvalidRefreshToken

	token, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now(), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   enums.RoleUser,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = setup.service.Refresh(context.Background(), RefreshRequest{
		AccessToken:  token,
		RefreshToken: "stale",
	})
	requireAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutAgentClosesSessionsAndClearsPresence(t *testing.T) {
	setup := newAuthTestSetup(t, &models.User{ID: uuid.New(), PasswordHash: "x"}, nil)

	agentID := uuid.New()
	claims := &pkgAuth.AccessTokenClaims{
		UserID:  uuid.New(),
		Role:    enums.RoleAgent,
		AgentID: &agentID,
	}
	claims.ID = "access-id"

	if err := setup.service.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(setup.session.revoked) != 1 || setup.session.revoked[0] != "access-id" {
		t.Fatalf("expected session revoked, got %v", setup.session.revoked)
	}
	if len(setup.attendance.closed) != 1 || setup.attendance.closed[0].agentID != agentID {
		t.Fatalf("expected open sessions closed for agent")
	}
	if setup.attendance.closed[0].timedOut {
		t.Fatalf("explicit logout must not be marked as timeout")
	}
	if got, ok := setup.presence.states[agentID]; !ok || got {
		t.Fatalf("expected presence flag cleared")
	}
}

func TestLogoutContributorOnlyRevokesSession(t *testing.T) {
	setup := newAuthTestSetup(t, &models.User{ID: uuid.New(), PasswordHash: "x"}, nil)

	claims := &pkgAuth.AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleUser,
	}
	claims.ID = "access-id"

	if err := setup.service.Logout(context.Background(), claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(setup.attendance.closed) != 0 {
		t.Fatalf("contributor logout must not touch login sessions")
	}
}

type authTestSetup struct {
	service    Service
	session    *stubSessionManager
	presence   *stubAgentPresence
	attendance *stubAttendance
}

func newAuthTestSetup(t *testing.T, user *models.User, agent *agents.AgentDTO) *authTestSetup {
	t.Helper()
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	presence := &stubAgentPresence{states: map[uuid.UUID]bool{}}
	attendance := &stubAttendance{}
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user},
		SessionManager: sessionMgr,
		Agents:         stubAgentDirectory{agent: agent},
		AgentPresence:  presence,
		Attendance:     attendance,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &authTestSetup{
		service:    svc,
		session:    sessionMgr,
		presence:   presence,
		attendance: attendance,
	}
}

func requireAuthCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
	return typed
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func strPtr(value string) *string {
	return &value
}

type stubUserRepo struct {
	user *models.User
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	refreshToken   string
	rotateAccessID string
	rotateRefresh  string
	rotateErr      error
	rotatedFrom    string
	revoked        []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	return s.refreshToken, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	s.rotatedFrom = oldAccessID
	return s.rotateAccessID, s.rotateRefresh, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type stubAgentDirectory struct {
	agent *agents.AgentDTO
}

func (s stubAgentDirectory) GetByUserID(ctx context.Context, userID uuid.UUID) (*agents.AgentDTO, error) {
	if s.agent == nil || s.agent.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
	}
	return s.agent, nil
}

type stubAgentPresence struct {
	states map[uuid.UUID]bool
}

func (s *stubAgentPresence) SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error {
	s.states[id] = loggedIn
	return nil
}

type closedCall struct {
	agentID  uuid.UUID
	timedOut bool
}

type stubAttendance struct {
	started []uuid.UUID
	closed  []closedCall
}

func (s *stubAttendance) StartSessionIfNeeded(ctx context.Context, agentID uuid.UUID) (bool, error) {
	s.started = append(s.started, agentID)
	return true, nil
}

func (s *stubAttendance) CloseOpenSessions(ctx context.Context, agentID uuid.UUID, timedOut bool) (int, error) {
	s.closed = append(s.closed, closedCall{agentID: agentID, timedOut: timedOut})
	return 1, nil
}
