package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

// ContributionAuditLog is an append-only record of a lifecycle transition.
// Rows are inserted in the same transaction as the transition itself, for
// every actor role, and are never updated or deleted.
type ContributionAuditLog struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContributionID uuid.UUID         `gorm:"column:contribution_id;type:uuid;not null;index"`
	ActorRole      enums.Role        `gorm:"column:actor_role;type:role_enum;not null"`
	ActorID        uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	ActorEmail     string            `gorm:"column:actor_email;not null"`
	Action         enums.AuditAction `gorm:"column:action;type:audit_action_enum;not null"`
	Metadata       json.RawMessage   `gorm:"column:metadata;type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time         `gorm:"column:created_at;autoCreateTime"`
}
