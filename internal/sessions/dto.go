package sessions

import (
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

// SessionDTO is one attendance interval. Ongoing sessions report a
// provisional duration measured against the current time; the stored row is
// untouched until the session closes.
type SessionDTO struct {
	ID              uuid.UUID  `json:"id"`
	AgentID         uuid.UUID  `json:"agent_id"`
	LoginTime       time.Time  `json:"login_time"`
	LogoutTime      *time.Time `json:"logout_time,omitempty"`
	Ongoing         bool       `json:"ongoing"`
	DurationSeconds int64      `json:"duration_seconds"`
}

// AttendanceReport aggregates an agent's sessions over a date range.
type AttendanceReport struct {
	AgentID      uuid.UUID    `json:"agent_id"`
	From         time.Time    `json:"from"`
	To           time.Time    `json:"to"`
	Sessions     []SessionDTO `json:"sessions"`
	TotalSeconds int64        `json:"total_seconds"`
}

func sessionFromModel(session models.AgentLoginSession, now time.Time) SessionDTO {
	end := now
	ongoing := true
	if session.LogoutTime != nil {
		end = *session.LogoutTime
		ongoing = false
	}
	duration := end.Sub(session.LoginTime)
	if duration < 0 {
		duration = 0
	}
	return SessionDTO{
		ID:              session.ID,
		AgentID:         session.AgentID,
		LoginTime:       session.LoginTime,
		LogoutTime:      session.LogoutTime,
		Ongoing:         ongoing,
		DurationSeconds: int64(duration / time.Second),
	}
}
