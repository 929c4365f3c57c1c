package profile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
)

// Repository defines persistence operations for profiles and credentials.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProfileByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]any) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}
