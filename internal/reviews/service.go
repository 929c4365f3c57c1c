package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/internal/catalog"
	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
)

const (
	minRate       = 0
	maxRate       = 5
	maxTextLength = 4000
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input is a submitted review.
type Input struct {
	Author string `json:"author" validate:"required,max=255"`
	Email  string `json:"email" validate:"omitempty,email"`
	Text   string `json:"text" validate:"required"`
	Rate   int    `json:"rate"`
}

// Service accepts reviews and keeps the product rating in step with them.
type Service interface {
	Submit(ctx context.Context, productID uuid.UUID, input Input) ([]catalog.ReviewView, error)
	List(ctx context.Context, productID uuid.UUID) ([]catalog.ReviewView, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the reviews service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Submit stores the review and recomputes the product rating as the mean of
// all rates, in one transaction. Returns the updated review list.
func (s *service) Submit(ctx context.Context, productID uuid.UUID, input Input) ([]catalog.ReviewView, error) {
	if input.Rate < minRate || input.Rate > maxRate {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRate, "rate must be between 0 and 5").
			WithDetails(map[string]any{"rate": input.Rate})
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review text is required")
	}
	text = truncateText(text, maxTextLength)

	var views []catalog.ReviewView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindProductByID(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		review := models.Review{
			ID:        uuid.New(),
			ProductID: productID,
			Author:    strings.TrimSpace(input.Author),
			Email:     strings.TrimSpace(input.Email),
			Text:      text,
			Rate:      input.Rate,
		}
		if err := repo.CreateReview(ctx, &review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}

		avg, err := repo.AverageRate(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average rate")
		}
		if err := repo.UpdateProductRating(ctx, productID, avg); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product rating")
		}

		reviews, err := repo.ListReviews(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
		}
		views = reviewViews(reviews)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (s *service) List(ctx context.Context, productID uuid.UUID) ([]catalog.ReviewView, error) {
	if _, err := s.repo.FindProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	reviews, err := s.repo.ListReviews(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	return reviewViews(reviews), nil
}

// truncateText caps the text at maxBytes without splitting a UTF-8 rune.
func truncateText(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func reviewViews(reviews []models.Review) []catalog.ReviewView {
	views := make([]catalog.ReviewView, 0, len(reviews))
	for _, review := range reviews {
		views = append(views, catalog.ReviewView{
			Author: review.Author,
			Email:  review.Email,
			Text:   review.Text,
			Rate:   review.Rate,
			Date:   review.CreatedAt,
		})
	}
	return views
}
