package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

// Repository defines persistence operations for authentication principals.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateUser(ctx context.Context, user *models.User) error
	CreateProfile(ctx context.Context, profile *models.Profile) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}
