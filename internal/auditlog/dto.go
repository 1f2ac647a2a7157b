package auditlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

// EntryDTO is the audit entry projection returned to the admin console.
type EntryDTO struct {
	ID             uuid.UUID         `json:"id"`
	ContributionID uuid.UUID         `json:"contribution_id"`
	ActorRole      enums.Role        `json:"actor_role"`
	ActorID        uuid.UUID         `json:"actor_id"`
	ActorEmail     string            `json:"actor_email"`
	Action         enums.AuditAction `json:"action"`
	Metadata       json.RawMessage   `json:"metadata"`
	CreatedAt      time.Time         `json:"created_at"`
}

// EntryList wraps a page of entries plus the next page cursor.
type EntryList struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel converts a persisted audit row into its DTO projection.
func FromModel(entry models.ContributionAuditLog) EntryDTO {
	metadata := entry.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}
	return EntryDTO{
		ID:             entry.ID,
		ContributionID: entry.ContributionID,
		ActorRole:      entry.ActorRole,
		ActorID:        entry.ActorID,
		ActorEmail:     entry.ActorEmail,
		Action:         entry.Action,
		Metadata:       metadata,
		CreatedAt:      entry.CreatedAt,
	}
}
