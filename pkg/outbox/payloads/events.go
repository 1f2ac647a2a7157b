package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/onestoplease/onestoplease-backend/pkg/enums"
)

// ContributionSubmittedEvent signals a new contribution entered the queue.
type ContributionSubmittedEvent struct {
	ContributionID   uuid.UUID              `json:"contribution_id"`
	UserID           uuid.UUID              `json:"user_id"`
	ProductName      string                 `json:"product_name"`
	ContributionType enums.ContributionType `json:"contribution_type"`
	Pincode          string                 `json:"pincode"`
}

// ContributionAssignmentEvent covers both assignment and unassignment.
type ContributionAssignmentEvent struct {
	ContributionID uuid.UUID                `json:"contribution_id"`
	UserID         uuid.UUID                `json:"user_id"`
	AgentID        uuid.UUID                `json:"agent_id"`
	Status         enums.ContributionStatus `json:"status"`
}

// ContributionDecisionEvent is emitted when an assigned agent decides.
type ContributionDecisionEvent struct {
	ContributionID  uuid.UUID                `json:"contribution_id"`
	UserID          uuid.UUID                `json:"user_id"`
	AgentID         uuid.UUID                `json:"agent_id"`
	Status          enums.ContributionStatus `json:"status"`
	RejectionReason *enums.RejectionReason   `json:"rejection_reason,omitempty"`
}

// ContributionRevokedEvent reports an admin returning a rejection to the queue.
type ContributionRevokedEvent struct {
	ContributionID uuid.UUID `json:"contribution_id"`
	UserID         uuid.UUID `json:"user_id"`
	AdminUserID    uuid.UUID `json:"admin_user_id"`
}

// ContributionDeletedEvent reports an owner removing their contribution.
type ContributionDeletedEvent struct {
	ContributionID uuid.UUID `json:"contribution_id"`
	UserID         uuid.UUID `json:"user_id"`
}

// AgentSessionClosedEvent is emitted when an attendance interval closes,
// either on explicit logout or via the inactivity sweep.
type AgentSessionClosedEvent struct {
	SessionID  uuid.UUID `json:"session_id"`
	AgentID    uuid.UUID `json:"agent_id"`
	LoginTime  time.Time `json:"login_time"`
	LogoutTime time.Time `json:"logout_time"`
	TimedOut   bool      `json:"timed_out"`
}
