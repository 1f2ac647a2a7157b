package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/internal/agents"
	"github.com/onestoplease/onestoplease-backend/internal/users"
	pkgAuth "github.com/onestoplease/onestoplease-backend/pkg/auth"
	"github.com/onestoplease/onestoplease-backend/pkg/auth/session"
	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Logout(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type agentDirectory interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*agents.AgentDTO, error)
}

type agentPresence interface {
	SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error
}

type attendanceTracker interface {
	StartSessionIfNeeded(ctx context.Context, agentID uuid.UUID) (bool, error)
	CloseOpenSessions(ctx context.Context, agentID uuid.UUID, timedOut bool) (int, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	Agents         agentDirectory
	AgentPresence  agentPresence
	Attendance     attendanceTracker
	JWTConfig      config.JWTConfig
}

type service struct {
	users      userRepository
	session    sessionManager
	agents     agentDirectory
	presence   agentPresence
	attendance attendanceTracker
	jwtCfg     config.JWTConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Agents == nil {
		return nil, fmt.Errorf("agent directory is required")
	}
	if params.AgentPresence == nil {
		return nil, fmt.Errorf("agent presence is required")
	}
	if params.Attendance == nil {
		return nil, fmt.Errorf("attendance tracker is required")
	}
	return &service{
		users:      params.UserRepo,
		session:    params.SessionManager,
		agents:     params.Agents,
		presence:   params.AgentPresence,
		attendance: params.Attendance,
		jwtCfg:     params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	role, err := resolveRole(user.SystemRole)
	if err != nil {
		return nil, err
	}

	var agent *agents.AgentDTO
	if role == enums.RoleAgent {
		agent, err = s.agents.GetByUserID(ctx, user.ID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve agent")
		}
		if _, err := s.attendance.StartSessionIfNeeded(ctx, agent.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open login session")
		}
		if err := s.presence.SetLoggedIn(ctx, agent.ID, true); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flag agent presence")
		}
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	tokenPayload := pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   role,
		JTI:    accessID,
	}
	if agent != nil {
		agentID := agent.ID
		tokenPayload.AgentID = &agentID
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, tokenPayload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
		Agent:        agent,
	}, nil
}

func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	if normalizedSystemRole(user.SystemRole) != string(enums.RoleAdmin) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	accessID := session.NewAccessID()
	tokenPayload := pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   enums.RoleAdmin,
		JTI:    accessID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, tokenPayload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &AdminLoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

// Refresh rotates the refresh token and re-mints the access token with the
// same identity claims under a new jti.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate refresh token")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  claims.UserID,
		Email:   claims.Email,
		Role:    claims.Role,
		AgentID: claims.AgentID,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout revokes the caller's refresh session. Agent logouts also close any
// open login session and clear the presence flag.
func (s *service) Logout(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token claims")
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	if claims.Role == enums.RoleAgent && claims.AgentID != nil {
		if _, err := s.attendance.CloseOpenSessions(ctx, *claims.AgentID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close login session")
		}
		if err := s.presence.SetLoggedIn(ctx, *claims.AgentID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear agent presence")
		}
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}

// resolveRole maps the stored system role onto the signed token role.
// Accounts without a system role are plain contributors.
func resolveRole(systemRole *string) (enums.Role, error) {
	switch normalizedSystemRole(systemRole) {
	case "":
		return enums.RoleUser, nil
	case string(enums.RoleUser):
		return enums.RoleUser, nil
	case string(enums.RoleAgent):
		return enums.RoleAgent, nil
	case string(enums.RoleAdmin):
		return enums.RoleAdmin, nil
	default:
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
}

func normalizedSystemRole(role *string) string {
	if role == nil {
		return ""
	}
	value := strings.TrimSpace(*role)
	if value == "" {
		return ""
	}
	return strings.ToLower(value)
}
