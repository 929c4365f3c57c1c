package reviews

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupReviewsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:reviews_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  full_description TEXT,
  price NUMERIC NOT NULL,
  sale_price NUMERIC,
  sale_from DATETIME,
  sale_to DATETIME,
  count INTEGER NOT NULL DEFAULT 0,
  free_delivery INTEGER NOT NULL DEFAULT 1,
  limited INTEGER NOT NULL DEFAULT 0,
  available INTEGER NOT NULL DEFAULT 1,
  rating REAL NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE reviews (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  author TEXT,
  email TEXT,
  text TEXT,
  rate INTEGER NOT NULL,
  created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newReviewsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB) models.Product {
	t.Helper()
	product := models.Product{
		ID:         uuid.New(),
		CategoryID: uuid.New(),
		Title:      "Headphones",
		Price:      decimal.RequireFromString("59.90"),
		Count:      10,
		Available:  true,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func productRating(t *testing.T, db *gorm.DB, id uuid.UUID) float64 {
	t.Helper()
	var product models.Product
	require.NoError(t, db.Where("id = ?", id).First(&product).Error)
	return product.Rating
}

func TestSubmitRecomputesRating(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := newReviewsService(t, db)
	ctx := context.Background()
	product := seedProduct(t, db)

	views, err := svc.Submit(ctx, product.ID, Input{
		Author: "Alice", Text: "Great sound", Rate: 5,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.InDelta(t, 5.0, productRating(t, db, product.ID), 1e-9)

	views, err = svc.Submit(ctx, product.ID, Input{
		Author: "Bob", Text: "Broke after a week", Rate: 1,
	})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.InDelta(t, 3.0, productRating(t, db, product.ID), 1e-9)

	// Mean keeps full precision, no rounding to halves.
	_, err = svc.Submit(ctx, product.ID, Input{
		Author: "Cara", Text: "Decent", Rate: 4,
	})
	require.NoError(t, err)
	assert.InDelta(t, 10.0/3.0, productRating(t, db, product.ID), 1e-9)
}

func TestSubmitRejectsOutOfRangeRate(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := newReviewsService(t, db)
	product := seedProduct(t, db)

	for _, rate := range []int{-1, 6} {
		_, err := svc.Submit(context.Background(), product.ID, Input{
			Author: "Alice", Text: "text", Rate: rate,
		})
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeInvalidRate, typed.Code())
	}

	// Nothing was written, rating untouched.
	assert.InDelta(t, 0.0, productRating(t, db, product.ID), 1e-9)
	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSubmitTruncatesLongTextOnRuneBoundary(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := newReviewsService(t, db)
	product := seedProduct(t, db)

	// 1334 three-byte runes = 4002 bytes; a byte-index cut at 4000 would
	// land inside the 1334th rune.
	long := strings.Repeat("€", 1334)
	views, err := svc.Submit(context.Background(), product.ID, Input{
		Author: "Alice", Text: long, Rate: 4,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)

	stored := views[0].Text
	assert.True(t, utf8.ValidString(stored))
	assert.LessOrEqual(t, len(stored), 4000)
	assert.Equal(t, strings.Repeat("€", 1333), stored)
}

func TestSubmitUnknownProductFailsNotFound(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := newReviewsService(t, db)

	_, err := svc.Submit(context.Background(), uuid.New(), Input{
		Author: "Alice", Text: "text", Rate: 4,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListReturnsReviewsInSubmissionOrder(t *testing.T) {
	db := setupReviewsTestDB(t)
	svc := newReviewsService(t, db)
	ctx := context.Background()
	product := seedProduct(t, db)

	for i, author := range []string{"first", "second", "third"} {
		_, err := svc.Submit(ctx, product.ID, Input{
			Author: author, Text: "review text", Rate: i + 1,
		})
		require.NoError(t, err)
	}

	views, err := svc.List(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "first", views[0].Author)
	assert.Equal(t, "third", views[2].Author)
}
