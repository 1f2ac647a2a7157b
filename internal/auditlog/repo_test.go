package auditlog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS contribution_audit_logs (
  id TEXT PRIMARY KEY,
  contribution_id TEXT NOT NULL,
  actor_role TEXT NOT NULL,
  actor_id TEXT NOT NULL,
  actor_email TEXT NOT NULL,
  action TEXT NOT NULL,
  metadata TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func insertEntry(t *testing.T, db *gorm.DB, contributionID uuid.UUID, action enums.AuditAction, createdAt time.Time) models.ContributionAuditLog {
	t.Helper()

	entry := models.ContributionAuditLog{
		ID:             uuid.New(),
		ContributionID: contributionID,
		ActorRole:      enums.RoleAgent,
		ActorID:        uuid.New(),
		ActorEmail:     "agent@onestoplease.test",
		Action:         action,
		Metadata:       json.RawMessage(`{}`),
		CreatedAt:      createdAt,
	}
	require.NoError(t, db.Create(&entry).Error)
	return entry
}

func TestListByContributionFiltersAndOrders(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	target := uuid.New()
	other := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	first := insertEntry(t, db, target, enums.AuditActionAssigned, base)
	second := insertEntry(t, db, target, enums.AuditActionApproved, base.Add(time.Minute))
	insertEntry(t, db, other, enums.AuditActionSubmitted, base)

	entries, err := repo.ListByContribution(ctx, target, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, second.ID, entries[0].ID)
	require.Equal(t, first.ID, entries[1].ID)
}

func TestListPaginatesWithCursor(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contributionID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		insertEntry(t, db, contributionID, enums.AuditActionUpdated, base.Add(time.Duration(i)*time.Minute))
	}

	firstPage, err := repo.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// LimitWithBuffer fetches one extra row so the caller can detect more pages.
	require.Len(t, firstPage, 3)

	cursor := pagination.EncodeCursor(pagination.Cursor{
		CreatedAt: firstPage[1].CreatedAt,
		ID:        firstPage[1].ID,
	})
	secondPage, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	require.Equal(t, firstPage[2].ID, secondPage[0].ID)
}

func TestWriterRecordRequiresTransaction(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	writer, err := NewWriter(repo)
	require.NoError(t, err)

	actor := Actor{ID: uuid.New(), Email: "admin@onestoplease.test", Role: enums.RoleAdmin}
	err = writer.Record(context.Background(), nil, uuid.New(), actor, enums.AuditActionRevoked, nil)
	require.Error(t, err)
}

func TestWriterRecordInsertsWithinTransaction(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewRepository(db)
	writer, err := NewWriter(repo)
	require.NoError(t, err)

	contributionID := uuid.New()
	actor := Actor{ID: uuid.New(), Email: "admin@onestoplease.test", Role: enums.RoleAdmin}

	err = db.Transaction(func(tx *gorm.DB) error {
		return writer.Record(context.Background(), tx, contributionID, actor, enums.AuditActionRevoked, map[string]any{
			"previous_status": "rejected",
		})
	})
	require.NoError(t, err)

	entries, err := repo.ListByContribution(context.Background(), contributionID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, enums.AuditActionRevoked, entries[0].Action)
	require.Equal(t, enums.RoleAdmin, entries[0].ActorRole)
	require.Contains(t, string(entries[0].Metadata), "previous_status")
}
