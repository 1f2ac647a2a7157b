package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateContribution OutboxAggregateType = "contribution"
	AggregateAgentSession OutboxAggregateType = "agent_session"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateContribution,
	AggregateAgentSession,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventContributionSubmitted  OutboxEventType = "contribution_submitted"
	EventContributionAssigned   OutboxEventType = "contribution_assigned"
	EventContributionUnassigned OutboxEventType = "contribution_unassigned"
	EventContributionApproved   OutboxEventType = "contribution_approved"
	EventContributionRejected   OutboxEventType = "contribution_rejected"
	EventContributionRevoked    OutboxEventType = "contribution_revoked"
	EventContributionDeleted    OutboxEventType = "contribution_deleted"
	EventAgentSessionClosed     OutboxEventType = "agent_session_closed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventContributionSubmitted,
	EventContributionAssigned,
	EventContributionUnassigned,
	EventContributionApproved,
	EventContributionRejected,
	EventContributionRevoked,
	EventContributionDeleted,
	EventAgentSessionClosed,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
