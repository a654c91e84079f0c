package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/ogp-platform/proforma-backend/pkg/errors"
)

const userTestSchema = `
CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  is_admin BOOLEAN NOT NULL DEFAULT FALSE,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  deleted_at DATETIME,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`

func setupUserTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(userTestSchema).Error)

	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)
	return conn, svc
}

func validInput() CreateUserInput {
	return CreateUserInput{
		Email:     "admin@example.com",
		Password:  "correct-horse",
		FirstName: "Ada",
		LastName:  "Admin",
		IsAdmin:   true,
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	_, svc := setupUserTest(t)

	user, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)
	assert.True(t, user.IsActive)
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	_, svc := setupUserTest(t)

	input := validInput()
	input.Email = "  Admin@Example.COM "
	user, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	_, svc := setupUserTest(t)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validInput())
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestCreateUserValidation(t *testing.T) {
	_, svc := setupUserTest(t)

	input := validInput()
	input.Password = "short"
	_, err := svc.Create(context.Background(), input)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestVerifyCredentials(t *testing.T) {
	conn, svc := setupUserTest(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	user, err := svc.VerifyCredentials(context.Background(), "admin@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	var reloaded struct{ LastLoginAt *string }
	require.NoError(t, conn.Table("users").Select("last_login_at").
		Where("id = ?", created.ID).Scan(&reloaded).Error)
	assert.NotNil(t, reloaded.LastLoginAt)

	_, err = svc.VerifyCredentials(context.Background(), "admin@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.VerifyCredentials(context.Background(), "nobody@example.com", "correct-horse")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestVerifyCredentialsArchivedUser(t *testing.T) {
	conn, svc := setupUserTest(t)

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.NoError(t, conn.Model(created).Update("is_active", false).Error)

	_, err = svc.VerifyCredentials(context.Background(), "admin@example.com", "correct-horse")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}
