package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/onestoplease/onestoplease-backend/pkg/config"
	"github.com/onestoplease/onestoplease-backend/pkg/db/models"
	pkgerrors "github.com/onestoplease/onestoplease-backend/pkg/errors"
	"github.com/onestoplease/onestoplease-backend/pkg/security"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

func setupRegisterTestDB(t *testing.T) *gorm.DB {
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

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func sampleRegisterRequest(email string) RegisterRequest {
	return RegisterRequest{
		FirstName: "Jamie",
		LastName:  "Rivera",
		Email:     email,
		Password:  "Secret123!",
		AcceptTOS: true,
	}
}

func TestRegisterCreatesContributor(t *testing.T) {
	db := setupRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		TX:             gormTxRunner{db: db},
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	created, err := svc.Register(context.Background(), sampleRegisterRequest("New@Example.com"))
	require.NoError(t, err)
	require.Equal(t, "new@example.com", created.Email)
	require.Nil(t, created.SystemRole)

	var user models.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&user).Error)
	require.True(t, user.IsActive)

	ok, err := security.VerifyPassword("Secret123!", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := setupRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		TX:             gormTxRunner{db: db},
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), sampleRegisterRequest("dup@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), sampleRegisterRequest("dup@example.com"))
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestRegisterRequiresTOS(t *testing.T) {
	db := setupRegisterTestDB(t)
	svc, err := NewRegisterService(RegisterServiceParams{
		TX:             gormTxRunner{db: db},
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	req := sampleRegisterRequest("tos@example.com")
	req.AcceptTOS = false
	_, err = svc.Register(context.Background(), req)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAdminRegisterProvisionsAdminRecord(t *testing.T) {
	db := setupRegisterTestDB(t)
	svc, err := NewAdminRegisterService(AdminRegisterServiceParams{
		TX:             gormTxRunner{db: db},
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)

	created, err := svc.Register(context.Background(), AdminRegisterRequest{
		Name:     "Root Admin",
		Email:    "root@example.com",
		Password: "Secret123!",
	})
	require.NoError(t, err)
	require.NotNil(t, created.SystemRole)
	require.Equal(t, "admin", *created.SystemRole)

	var admin models.Admin
	require.NoError(t, db.Where("email = ?", "root@example.com").First(&admin).Error)
	require.Equal(t, created.ID, admin.UserID)
}
