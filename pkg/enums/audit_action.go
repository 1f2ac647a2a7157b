package enums

import "fmt"

// AuditAction identifies the lifecycle transition recorded in an audit entry.
type AuditAction string

const (
	AuditActionSubmitted  AuditAction = "submitted"
	AuditActionUpdated    AuditAction = "updated"
	AuditActionAssigned   AuditAction = "assigned"
	AuditActionUnassigned AuditAction = "unassigned"
	AuditActionApproved   AuditAction = "approved"
	AuditActionRejected   AuditAction = "rejected"
	AuditActionRevoked    AuditAction = "revoked"
	AuditActionDeleted    AuditAction = "deleted"
)

var validAuditActions = []AuditAction{
	AuditActionSubmitted,
	AuditActionUpdated,
	AuditActionAssigned,
	AuditActionUnassigned,
	AuditActionApproved,
	AuditActionRejected,
	AuditActionRevoked,
	AuditActionDeleted,
}

// IsValid reports whether the value matches a known audit action.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
