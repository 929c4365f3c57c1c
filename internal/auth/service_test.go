package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgauth "github.com/megano/shop-backend/pkg/auth"
	"github.com/megano/shop-backend/pkg/config"
	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeSessionRegistry struct {
	started []string
	revoked []string
}

func (f *fakeSessionRegistry) Start(_ context.Context, sessionID string) error {
	f.started = append(f.started, sessionID)
	return nil
}

func (f *fakeSessionRegistry) Revoke(_ context.Context, sessionID string) error {
	f.revoked = append(f.revoked, sessionID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "megano-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep the tests fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func setupAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", uuid.NewString())
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

func newAuthService(t *testing.T, db *gorm.DB, sessions *fakeSessionRegistry) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, sessions, testJWTConfig(), testPasswordConfig())
	require.NoError(t, err)
	return svc
}

func assertErrorCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestSignUpCreatesUserProfileAndSession(t *testing.T) {
	db := setupAuthTestDB(t)
	sessions := &fakeSessionRegistry{}
	svc := newAuthService(t, db, sessions)

	sess, err := svc.SignUp(context.Background(), SignUpInput{
		Name:     "Pat Doe",
		Username: "Pat.Doe",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "pat.doe", sess.Username)
	require.Len(t, sessions.started, 1)

	var user models.User
	require.NoError(t, db.Where("username = ?", "pat.doe").First(&user).Error)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "Pat Doe", profile.FullName)

	// The token carries the registered session id as its jti.
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sessions.started[0], claims.ID)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestSignUpDuplicateUsernameConflicts(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db, &fakeSessionRegistry{})
	ctx := context.Background()

	input := SignUpInput{Name: "Pat", Username: "taken", Password: "s3cret-pass"}
	_, err := svc.SignUp(ctx, input)
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, input)
	assertErrorCode(t, err, pkgerrors.CodeConflict)

	// The failed attempt must not leave a second profile behind.
	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.EqualValues(t, 1, profiles)
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db, &fakeSessionRegistry{})

	_, err := svc.SignUp(context.Background(), SignUpInput{
		Name: "Pat", Username: "pat", Password: "short",
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestSignInVerifiesCredentials(t *testing.T) {
	db := setupAuthTestDB(t)
	sessions := &fakeSessionRegistry{}
	svc := newAuthService(t, db, sessions)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Name: "Pat", Username: "pat", Password: "s3cret-pass"})
	require.NoError(t, err)

	sess, err := svc.SignIn(ctx, SignInInput{Username: "PAT", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "pat", sess.Username)
	assert.Len(t, sessions.started, 2)

	var user models.User
	require.NoError(t, db.Where("username = ?", "pat").First(&user).Error)
	assert.NotNil(t, user.LastLoginAt)
}

func TestSignInWrongPasswordUnauthorized(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := newAuthService(t, db, &fakeSessionRegistry{})
	ctx := context.Background()

	_, err := svc.SignUp(ctx, SignUpInput{Name: "Pat", Username: "pat", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, SignInInput{Username: "pat", Password: "wrong-pass"})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)

	// Unknown username yields the same error code.
	_, err = svc.SignIn(ctx, SignInInput{Username: "ghost", Password: "s3cret-pass"})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestSignOutRevokesSession(t *testing.T) {
	db := setupAuthTestDB(t)
	sessions := &fakeSessionRegistry{}
	svc := newAuthService(t, db, sessions)

	require.NoError(t, svc.SignOut(context.Background(), "session-123"))
	assert.Equal(t, []string{"session-123"}, sessions.revoked)

	err := svc.SignOut(context.Background(), "  ")
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}
