package agents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
)

func setupAgentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  system_role TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS service_agents (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  logged_in INTEGER NOT NULL DEFAULT 0,
  last_active DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newAgent(t *testing.T, db *gorm.DB, name string) *models.ServiceAgent {
	t.Helper()

	agent := &models.ServiceAgent{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   name,
		Email:  name + "@onestoplease.test",
	}
	require.NoError(t, db.Create(agent).Error)
	return agent
}

func TestResolveNamesOmitsUnknownIDs(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := newAgent(t, db, "asha")
	second := newAgent(t, db, "vikram")

	names, err := repo.ResolveNames(ctx, []uuid.UUID{first.ID, second.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, names, 2)
	require.Equal(t, "asha", names[first.ID])
	require.Equal(t, "vikram", names[second.ID])
}

func TestTouchActivityAndListIdle(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	idle := newAgent(t, db, "idle")
	active := newAgent(t, db, "active")
	offline := newAgent(t, db, "offline")

	require.NoError(t, repo.SetLoggedIn(ctx, idle.ID, true))
	require.NoError(t, repo.SetLoggedIn(ctx, active.ID, true))

	now := time.Now().UTC()
	require.NoError(t, repo.TouchActivity(ctx, idle.ID, now.Add(-30*time.Minute)))
	require.NoError(t, repo.TouchActivity(ctx, active.ID, now))

	cutoff := now.Add(-20 * time.Minute)
	agents, err := repo.ListIdle(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, idle.ID, agents[0].ID)

	// Logged-out agents never count as idle, even with stale activity.
	require.NoError(t, repo.TouchActivity(ctx, offline.ID, now.Add(-2*time.Hour)))
	agents, err = repo.ListIdle(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, agents, 1)
}

func TestListIdleIncludesNeverActiveAgents(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	stale := newAgent(t, db, "stale")
	require.NoError(t, repo.SetLoggedIn(ctx, stale.ID, true))

	agents, err := repo.ListIdle(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, stale.ID, agents[0].ID)
}

func TestDeleteReportsRowsAffected(t *testing.T) {
	db := setupAgentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	agent := newAgent(t, db, "asha")

	rows, err := repo.Delete(ctx, agent.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.Delete(ctx, agent.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)
}
