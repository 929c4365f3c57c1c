package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/config"
	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func setupProfileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:profile_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  full_name TEXT,
  email TEXT,
  phone TEXT,
  avatar_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newProfileService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), testPasswordConfig())
	require.NoError(t, err)
	return svc
}

func seedUserWithProfile(t *testing.T, db *gorm.DB, password string) models.User {
	t.Helper()

	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)

	user := models.User{
		ID:           uuid.New(),
		Username:     "pat",
		PasswordHash: hash,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{
		ID:       uuid.New(),
		UserID:   user.ID,
		FullName: "Pat Doe",
		Email:    "pat@example.com",
		Phone:    "+371000111",
	}
	require.NoError(t, db.Create(&profile).Error)
	return user
}

func assertErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func strPtr(s string) *string { return &s }

func TestGetReturnsProfileView(t *testing.T) {
	db := setupProfileTestDB(t)
	svc := newProfileService(t, db)
	user := seedUserWithProfile(t, db, "s3cret-pass")

	view, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pat Doe", view.FullName)
	assert.Equal(t, "pat@example.com", view.Email)
	assert.Nil(t, view.Avatar)
}

func TestUpdateTouchesOnlyProvidedFields(t *testing.T) {
	db := setupProfileTestDB(t)
	svc := newProfileService(t, db)
	user := seedUserWithProfile(t, db, "s3cret-pass")

	view, err := svc.Update(context.Background(), user.ID, UpdateInput{
		Phone:  strPtr("+371999888"),
		Avatar: strPtr("https://cdn.megano.store/avatars/pat.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Pat Doe", view.FullName)
	assert.Equal(t, "pat@example.com", view.Email)
	assert.Equal(t, "+371999888", view.Phone)
	require.NotNil(t, view.Avatar)
	assert.Equal(t, "https://cdn.megano.store/avatars/pat.png", view.Avatar.Src)
}

func TestUpdateRejectsInvalidEmail(t *testing.T) {
	db := setupProfileTestDB(t)
	svc := newProfileService(t, db)
	user := seedUserWithProfile(t, db, "s3cret-pass")

	_, err := svc.Update(context.Background(), user.ID, UpdateInput{
		Email: strPtr("not-an-email"),
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateUnknownUserNotFound(t *testing.T) {
	db := setupProfileTestDB(t)
	svc := newProfileService(t, db)

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{
		Phone: strPtr("+371999888"),
	})
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	db := setupProfileTestDB(t)
	svc := newProfileService(t, db)
	user := seedUserWithProfile(t, db, "s3cret-pass")
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID, ChangePasswordInput{
		CurrentPassword: "wrong-pass",
		NewPassword:     "brand-new-pass",
	})
	assertErrorCode(t, err, pkgerrors.CodeForbidden)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, ChangePasswordInput{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "brand-new-pass",
	}))

	var stored models.User
	require.NoError(t, db.Where("id = ?", user.ID).First(&stored).Error)
	match, err := security.VerifyPassword("brand-new-pass", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestChangePasswordRejectsShortReplacement(t *testing.T) {
	db := setupProfileTestDB(t)
	svc := newProfileService(t, db)
	user := seedUserWithProfile(t, db, "s3cret-pass")

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordInput{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "short",
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}
