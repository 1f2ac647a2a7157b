package admins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

func setupAdminsTestDB(t *testing.T) *gorm.DB {
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
CREATE TABLE IF NOT EXISTS admins (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newTestAdminsService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupAdminsTestDB(t)
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(db),
		TX:   gormTxRunner{db: db},
		PasswordConfig: config.PasswordConfig{
			ArgonMemoryKB:    8,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	require.NoError(t, err)
	return svc, db
}

func TestCreateAdminProvisionsUserWithRole(t *testing.T) {
	svc, db := newTestAdminsService(t)

	created, err := svc.Create(context.Background(), CreateAdminInput{
		Name:  "Priya Nair",
		Email: "Priya@OneStopLease.test",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.TempPassword)
	require.Equal(t, "priya@onestoplease.test", created.Admin.Email)

	var user models.User
	require.NoError(t, db.Where("email = ?", "priya@onestoplease.test").First(&user).Error)
	require.NotNil(t, user.SystemRole)
	require.Equal(t, "admin", *user.SystemRole)

	found, err := svc.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, created.Admin.ID, found.ID)
}

func TestCreateAdminRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAdminsService(t)

	_, err := svc.Create(context.Background(), CreateAdminInput{
		Name:  "Priya Nair",
		Email: "priya@onestoplease.test",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateAdminInput{
		Name:  "Second Priya",
		Email: "priya@onestoplease.test",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestListAdminsOrdersByName(t *testing.T) {
	svc, _ := newTestAdminsService(t)

	for _, entry := range []struct{ name, email string }{
		{"Vikram", "vikram@onestoplease.test"},
		{"Asha", "asha@onestoplease.test"},
	} {
		_, err := svc.Create(context.Background(), CreateAdminInput{Name: entry.name, Email: entry.email})
		require.NoError(t, err)
	}

	admins, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, admins, 2)
	require.Equal(t, "Asha", admins[0].Name)
	require.Equal(t, "Vikram", admins[1].Name)
}
