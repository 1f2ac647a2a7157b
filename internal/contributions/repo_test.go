package contributions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	dbtypes "github.com/onestoplease/onestoplease-backend/pkg/db/types"
	"github.com/onestoplease/onestoplease-backend/pkg/enums"
	"github.com/onestoplease/onestoplease-backend/pkg/pagination"
)

func setupContributionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS contributions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  contact_name TEXT NOT NULL,
  contact_phone TEXT NOT NULL,
  address TEXT NOT NULL,
  landmark TEXT,
  location_link TEXT,
  pincode TEXT NOT NULL,
  product_name TEXT NOT NULL,
  description TEXT,
  contribution_type TEXT NOT NULL,
  image_urls TEXT NOT NULL DEFAULT '{}',
  bill_url TEXT,
  attributes TEXT NOT NULL DEFAULT '{}',
  expected_price TEXT,
  warranty_covered INTEGER NOT NULL DEFAULT 0,
  warranty_start DATETIME,
  warranty_end DATETIME,
  status TEXT NOT NULL DEFAULT 'pending',
  assigned_agent_id TEXT,
  rejection_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newPendingContribution(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Contribution {
	t.Helper()

	contribution := &models.Contribution{
		ID:               uuid.New(),
		UserID:           userID,
		ContactName:      "Asha Rao",
		ContactPhone:     "9000000001",
		Address:          "12 MG Road",
		Pincode:          "560001",
		ProductName:      "Washing machine",
		ContributionType: enums.ContributionTypeSell,
		ImageURLs:        []string{"https://storage.example/img1.jpg"},
		Attributes:       dbtypes.StringMap{"brand": "LG"},
		Status:           enums.ContributionStatusPending,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	require.NoError(t, db.Create(contribution).Error)
	return contribution
}

func TestAssignOnlyOneWinner(t *testing.T) {
	db := setupContributionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contribution := newPendingContribution(t, db, uuid.New())
	first := uuid.New()
	second := uuid.New()

	rows, err := repo.Assign(ctx, contribution.ID, first)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	rows, err = repo.Assign(ctx, contribution.ID, second)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	stored, err := repo.FindByID(ctx, contribution.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContributionStatusAssigned, stored.Status)
	require.NotNil(t, stored.AssignedAgentID)
	require.Equal(t, first, *stored.AssignedAgentID)
}

func TestUnassignRequiresCurrentAssignee(t *testing.T) {
	db := setupContributionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contribution := newPendingContribution(t, db, uuid.New())
	assignee := uuid.New()
	_, err := repo.Assign(ctx, contribution.ID, assignee)
	require.NoError(t, err)

	rows, err := repo.Unassign(ctx, contribution.ID, uuid.New())
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	rows, err = repo.Unassign(ctx, contribution.ID, assignee)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	stored, err := repo.FindByID(ctx, contribution.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContributionStatusPending, stored.Status)
	require.Nil(t, stored.AssignedAgentID)
	require.Nil(t, stored.RejectionReason)
}

func TestRejectPersistsReasonAndRevokeClearsIt(t *testing.T) {
	db := setupContributionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contribution := newPendingContribution(t, db, uuid.New())
	assignee := uuid.New()
	_, err := repo.Assign(ctx, contribution.ID, assignee)
	require.NoError(t, err)

	rows, err := repo.Reject(ctx, contribution.ID, assignee, enums.RejectionReasonDamaged)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	stored, err := repo.FindByID(ctx, contribution.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContributionStatusRejected, stored.Status)
	require.NotNil(t, stored.RejectionReason)
	require.Equal(t, enums.RejectionReasonDamaged, *stored.RejectionReason)

	// Revoke is precondition-guarded: it only fires on rejected rows.
	rows, err = repo.Revoke(ctx, contribution.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	stored, err = repo.FindByID(ctx, contribution.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContributionStatusPending, stored.Status)
	require.Nil(t, stored.AssignedAgentID)
	require.Nil(t, stored.RejectionReason)

	rows, err = repo.Revoke(ctx, contribution.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)
}

func TestApproveKeepsAssignee(t *testing.T) {
	db := setupContributionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	contribution := newPendingContribution(t, db, uuid.New())
	assignee := uuid.New()
	_, err := repo.Assign(ctx, contribution.ID, assignee)
	require.NoError(t, err)

	rows, err := repo.Approve(ctx, contribution.ID, assignee)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	stored, err := repo.FindByID(ctx, contribution.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ContributionStatusApproved, stored.Status)
	require.NotNil(t, stored.AssignedAgentID)
	require.Equal(t, assignee, *stored.AssignedAgentID)

	// Approved rows are out of the assignable pool.
	rows, err = repo.Assign(ctx, contribution.ID, uuid.New())
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)
}

func TestListQueueReturnsOnlyPendingUnassigned(t *testing.T) {
	db := setupContributionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := newPendingContribution(t, db, uuid.New())
	assigned := newPendingContribution(t, db, uuid.New())
	_, err := repo.Assign(ctx, assigned.ID, uuid.New())
	require.NoError(t, err)

	queue, err := repo.ListQueue(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	require.Equal(t, pending.ID, queue[0].ID)
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	db := setupContributionsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	contribution := newPendingContribution(t, db, owner)

	rows, err := repo.Delete(ctx, contribution.ID, uuid.New())
	require.NoError(t, err)
	require.EqualValues(t, 0, rows)

	rows, err = repo.Delete(ctx, contribution.ID, owner)
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)

	_, err = repo.FindByID(ctx, contribution.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
