package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentLoginSession is one attendance interval for a service agent.
// A partial unique index on (agent_id, session_date) WHERE logout_time IS NULL
// guarantees at most one open session per agent per calendar day, which makes
// the login-time insert idempotent.
type AgentLoginSession struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AgentID     uuid.UUID  `gorm:"column:agent_id;type:uuid;not null;index"`
	LoginTime   time.Time  `gorm:"column:login_time;not null"`
	LogoutTime  *time.Time `gorm:"column:logout_time"`
	SessionDate time.Time  `gorm:"column:session_date;type:date;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
