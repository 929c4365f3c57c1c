package profile

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/config"
	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/security"
)

const minPasswordLength = 8

// AvatarView points at the uploaded avatar image.
type AvatarView struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// View is the public projection of a profile.
type View struct {
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	Avatar   *AvatarView `json:"avatar,omitempty"`
}

// UpdateInput carries the editable profile fields. Nil pointers leave the
// stored value untouched.
type UpdateInput struct {
	FullName *string `json:"fullName" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,max=255"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=1024"`
}

// ChangePasswordInput carries the current and replacement password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Service exposes profile reads, edits and password changes.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*View, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}

type service struct {
	repo     Repository
	password config.PasswordConfig
}

// NewService builds the profile service.
func NewService(repo Repository, password config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo, password: password}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileView(profile), nil
}

func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	updates := map[string]any{}
	if input.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "email address is invalid")
			}
		}
		updates["email"] = email
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Avatar != nil {
		avatar := strings.TrimSpace(*input.Avatar)
		if avatar == "" {
			updates["avatar_url"] = nil
		} else {
			updates["avatar_url"] = avatar
		}
	}

	if len(updates) > 0 {
		if _, err := s.loadProfile(ctx, userID); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateProfile(ctx, userID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
	}

	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileView(profile), nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.NewPassword) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	match, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return pkgerrors.New(pkgerrors.CodeForbidden, "current password does not match")
	}

	hash, err := security.HashPassword(input.NewPassword, s.password)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store password")
	}
	return nil
}

func (s *service) loadProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.repo.FindProfileByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}

func profileView(profile *models.Profile) *View {
	view := &View{
		FullName: profile.FullName,
		Email:    profile.Email,
		Phone:    profile.Phone,
	}
	if profile.AvatarURL != nil && *profile.AvatarURL != "" {
		view.Avatar = &AvatarView{Src: *profile.AvatarURL, Alt: profile.FullName}
	}
	return view
}
