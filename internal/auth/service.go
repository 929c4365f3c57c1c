package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/megano/shop-backend/pkg/auth"
	"github.com/megano/shop-backend/pkg/auth/session"
	"github.com/megano/shop-backend/pkg/config"
	"github.com/megano/shop-backend/pkg/db"
	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/security"
)

const (
	minPasswordLength = 8
	maxUsernameLength = 150
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionRegistry interface {
	Start(ctx context.Context, sessionID string) error
	Revoke(ctx context.Context, sessionID string) error
}

// SignUpInput is the registration payload.
type SignUpInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignInInput is the credential payload.
type SignInInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is an issued access token plus the identity it carries.
type Session struct {
	Token    string
	UserID   uuid.UUID
	Username string
}

// Service covers registration, credential sign-in and sign-out.
type Service interface {
	SignUp(ctx context.Context, input SignUpInput) (*Session, error)
	SignIn(ctx context.Context, input SignInInput) (*Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

type service struct {
	repo     Repository
	tx       txRunner
	sessions sessionRegistry
	jwt      config.JWTConfig
	password config.PasswordConfig
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(repo Repository, tx txRunner, sessions sessionRegistry, jwt config.JWTConfig, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		sessions: sessions,
		jwt:      jwt,
		password: password,
		now:      time.Now,
	}, nil
}

// SignUp creates the user and its empty profile in one transaction, then
// signs the new user in.
func (s *service) SignUp(ctx context.Context, input SignUpInput) (*Session, error) {
	name := strings.TrimSpace(input.Name)
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if name == "" || username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and username are required")
	}
	if len(username) > maxUsernameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is too long")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		IsActive:     true,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateUser(ctx, &user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "username already taken").
					WithDetails(map[string]any{"username": username})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		profile := models.Profile{
			ID:       uuid.New(),
			UserID:   user.ID,
			FullName: name,
		}
		if err := repo.CreateProfile(ctx, &profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.startSession(ctx, &user)
}

// SignIn verifies credentials and issues a fresh session token. The error is
// the same for an unknown username and a wrong password.
func (s *service) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	if username == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if !user.IsActive {
		return nil, invalidCredentials()
	}

	match, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, invalidCredentials()
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login time")
	}

	return s.startSession(ctx, user)
}

// SignOut revokes the session marker so the token dies before its JWT expiry.
func (s *service) SignOut(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session id missing")
	}
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) startSession(ctx context.Context, user *models.User) (*Session, error) {
	sessionID := session.NewSessionID()
	token, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:   user.ID,
		Username: user.Username,
		JTI:      sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := s.sessions.Start(ctx, sessionID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "start session")
	}
	return &Session{Token: token, UserID: user.ID, Username: user.Username}, nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
}
