package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/logger"
)

const defaultInactivityTimeout = 20 * time.Minute

type idleAgentLister interface {
	ListIdle(ctx context.Context, cutoff time.Time) ([]models.ServiceAgent, error)
	SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error
}

type sessionCloser interface {
	CloseOpenSessions(ctx context.Context, agentID uuid.UUID, timedOut bool) (int, error)
}

// SessionTimeoutJobParams configure the inactivity sweep.
type SessionTimeoutJobParams struct {
	Logger   *logger.Logger
	Agents   idleAgentLister
	Sessions sessionCloser
	Timeout  time.Duration
}

// NewSessionTimeoutJob builds the job that force-closes login sessions for
// agents idle past the inactivity timeout.
func NewSessionTimeoutJob(params SessionTimeoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Agents == nil {
		return nil, fmt.Errorf("agent lister required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session closer required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultInactivityTimeout
	}
	return &sessionTimeoutJob{
		logg:     params.Logger,
		agents:   params.Agents,
		sessions: params.Sessions,
		timeout:  timeout,
		now:      time.Now,
	}, nil
}

type sessionTimeoutJob struct {
	logg     *logger.Logger
	agents   idleAgentLister
	sessions sessionCloser
	timeout  time.Duration
	now      func() time.Time
}

func (j *sessionTimeoutJob) Name() string { return "session-timeout" }

// Run closes sessions one agent at a time so a single bad row cannot stall
// the whole sweep. Close and flag updates are both idempotent, so an agent
// picked up again next cycle is a no-op.
func (j *sessionTimeoutJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.timeout)
	idle, err := j.agents.ListIdle(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list idle agents: %w", err)
	}

	var closed int
	var errs []error
	for _, agent := range idle {
		agentCtx := j.logg.WithField(ctx, "agent_id", agent.ID.String())
		count, err := j.sessions.CloseOpenSessions(agentCtx, agent.ID, true)
		if err != nil {
			j.logg.Error(agentCtx, "close timed-out sessions", err)
			errs = append(errs, fmt.Errorf("close sessions %s: %w", agent.ID, err))
			continue
		}
		closed += count
		if err := j.agents.SetLoggedIn(agentCtx, agent.ID, false); err != nil {
			j.logg.Error(agentCtx, "clear agent presence", err)
			errs = append(errs, fmt.Errorf("clear presence %s: %w", agent.ID, err))
		}
	}

	if len(idle) > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"cutoff":          cutoff,
			"idle_agents":     len(idle),
			"sessions_closed": closed,
			"failures":        len(errs),
		})
		j.logg.Info(logCtx, "session timeout sweep complete")
	}
	return multierr.Combine(errs...)
}
