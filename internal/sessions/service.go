package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/outbox"
	"github.com/onestoplease/onestoplease-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service tracks agent attendance. Opening is idempotent per agent and UTC
// calendar day; closing is idempotent per open row. Both the explicit logout
// and the inactivity sweep funnel through CloseOpenSessions.
type Service interface {
	// StartSessionIfNeeded opens today's session unless one is already open.
	// Reports whether a new session was created.
	StartSessionIfNeeded(ctx context.Context, agentID uuid.UUID) (bool, error)
	// CloseOpenSessions stamps logout on every open session for the agent and
	// returns how many it closed. timedOut marks closes driven by the
	// inactivity sweep rather than an explicit logout.
	CloseOpenSessions(ctx context.Context, agentID uuid.UUID, timedOut bool) (int, error)
	// Report derives attendance over [from, to); open sessions count up to now.
	Report(ctx context.Context, agentID uuid.UUID, from, to time.Time) (*AttendanceReport, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService wires the attendance tracker. The clock is injectable for tests;
// pass nil to use time.Now.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sessions service requires repository")
	}
	if tx == nil {
		return nil, fmt.Errorf("sessions service requires transaction runner")
	}
	if publisher == nil {
		return nil, fmt.Errorf("sessions service requires outbox publisher")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, tx: tx, outbox: publisher, now: now}, nil
}

func (s *service) StartSessionIfNeeded(ctx context.Context, agentID uuid.UUID) (bool, error) {
	if agentID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	created, err := s.repo.OpenIfMissing(ctx, agentID, s.now())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
	}
	return created, nil
}

func (s *service) CloseOpenSessions(ctx context.Context, agentID uuid.UUID, timedOut bool) (int, error) {
	if agentID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}

	closed := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sessions, err := repo.CloseOpen(ctx, agentID, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close sessions")
		}
		for _, session := range sessions {
			event := outbox.DomainEvent{
				EventType:     enums.EventAgentSessionClosed,
				AggregateType: enums.AggregateAgentSession,
				AggregateID:   session.ID,
				Version:       1,
				Actor:         &outbox.ActorRef{AgentID: &session.AgentID, Role: enums.RoleAgent.String()},
				Data: payloads.AgentSessionClosedEvent{
					SessionID:  session.ID,
					AgentID:    session.AgentID,
					LoginTime:  session.LoginTime,
					LogoutTime: *session.LogoutTime,
					TimedOut:   timedOut,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}
		closed = len(sessions)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return closed, nil
}

func (s *service) Report(ctx context.Context, agentID uuid.UUID, from, to time.Time) (*AttendanceReport, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report range must end after it starts")
	}

	sessions, err := s.repo.ListRange(ctx, agentID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sessions")
	}

	now := s.now().UTC()
	report := &AttendanceReport{
		AgentID:  agentID,
		From:     from.UTC(),
		To:       to.UTC(),
		Sessions: make([]SessionDTO, 0, len(sessions)),
	}
	for _, session := range sessions {
		dto := sessionFromModel(session, now)
		report.Sessions = append(report.Sessions, dto)
		report.TotalSeconds += dto.DurationSeconds
	}
	return report, nil
}
