package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/onestoplease/onestoplease-backend/pkg/auth"
)

type contextKey string

const ctxClaims contextKey = "token_claims"

// ClaimsFromContext returns the verified token claims seeded by Auth.
func ClaimsFromContext(ctx context.Context) *pkgAuth.AccessTokenClaims {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClaims).(*pkgAuth.AccessTokenClaims); ok {
		return v
	}
	return nil
}

// WithClaims injects verified claims into the context. Exposed for handler tests.
func WithClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClaims, claims)
}

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return string(claims.Role)
	}
	return ""
}

func AgentIDFromContext(ctx context.Context) *uuid.UUID {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.AgentID
	}
	return nil
}
