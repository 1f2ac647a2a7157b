package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
)

type activityToucher interface {
	TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error
}

// AgentActivity stamps last_active for the authenticated agent before the
// handler runs. The inactivity sweeper reads this stamp. Failures are
// logged and do not block the request.
func AgentActivity(agents activityToucher, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if agents == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims != nil && claims.Role == enums.RoleAgent && claims.AgentID != nil {
				if err := agents.TouchActivity(r.Context(), *claims.AgentID, time.Now().UTC()); err != nil {
					logError(r.Context(), logg, "touch agent activity", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
