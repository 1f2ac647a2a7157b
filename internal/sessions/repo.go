package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sessions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// sessionDay normalizes a timestamp to its UTC calendar day.
func sessionDay(at time.Time) time.Time {
	utc := at.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *repository) OpenIfMissing(ctx context.Context, agentID uuid.UUID, loginTime time.Time) (bool, error) {
	session := models.AgentLoginSession{
		ID:          uuid.New(),
		AgentID:     agentID,
		LoginTime:   loginTime.UTC(),
		SessionDate: sessionDay(loginTime),
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&session)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindOpen(ctx context.Context, agentID uuid.UUID) ([]models.AgentLoginSession, error) {
	var sessions []models.AgentLoginSession
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND logout_time IS NULL", agentID).
		Order("login_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repository) CloseOpen(ctx context.Context, agentID uuid.UUID, logoutTime time.Time) ([]models.AgentLoginSession, error) {
	open, err := r.FindOpen(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}

	closedAt := logoutTime.UTC()
	res := r.db.WithContext(ctx).
		Model(&models.AgentLoginSession{}).
		Where("agent_id = ? AND logout_time IS NULL", agentID).
		Update("logout_time", closedAt)
	if res.Error != nil {
		return nil, res.Error
	}

	for i := range open {
		stamped := closedAt
		open[i].LogoutTime = &stamped
	}
	return open, nil
}

func (r *repository) ListRange(ctx context.Context, agentID uuid.UUID, from, to time.Time) ([]models.AgentLoginSession, error) {
	var sessions []models.AgentLoginSession
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND login_time >= ? AND login_time < ?", agentID, from.UTC(), to.UTC()).
		Order("login_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
