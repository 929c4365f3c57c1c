package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
	"github.com/megano/shop-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  image_id TEXT,
  parent_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE images (
  id TEXT PRIMARY KEY,
  src TEXT NOT NULL,
  alt TEXT,
  created_at DATETIME
);`,
		`CREATE TABLE tags (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`,
		`CREATE TABLE category_tags (
  category_id TEXT NOT NULL,
  tag_id TEXT NOT NULL,
  PRIMARY KEY (category_id, tag_id)
);`,
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
		`CREATE TABLE product_images (
  product_id TEXT NOT NULL,
  image_id TEXT NOT NULL,
  PRIMARY KEY (product_id, image_id)
);`,
		`CREATE TABLE product_tags (
  product_id TEXT NOT NULL,
  tag_id TEXT NOT NULL,
  PRIMARY KEY (product_id, tag_id)
);`,
		`CREATE TABLE specifications (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  value TEXT NOT NULL
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

type productSeed struct {
	title        string
	price        string
	count        int
	freeDelivery bool
	available    bool
	limited      bool
	rating       float64
	categoryID   uuid.UUID
	createdAt    time.Time
}

func seedProduct(t *testing.T, db *gorm.DB, seed productSeed) models.Product {
	t.Helper()

	price, err := decimal.NewFromString(seed.price)
	require.NoError(t, err)

	createdAt := seed.createdAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	product := models.Product{
		ID:           uuid.New(),
		CategoryID:   seed.categoryID,
		Title:        seed.title,
		Price:        price,
		Count:        seed.count,
		FreeDelivery: seed.freeDelivery,
		Limited:      seed.limited,
		Available:    seed.available,
		Rating:       seed.rating,
		CreatedAt:    createdAt,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func seedCategory(t *testing.T, db *gorm.DB, title string, parentID *uuid.UUID) models.Category {
	t.Helper()
	category := models.Category{ID: uuid.New(), Title: title, ParentID: parentID}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func TestListProductsAppliesOnlyProvidedFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Electronics", nil)
	seedProduct(t, db, productSeed{title: "Gaming laptop", price: "1500.00", count: 3, freeDelivery: true, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "Office laptop", price: "700.00", count: 5, freeDelivery: false, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "Headphones", price: "90.00", count: 0, freeDelivery: true, available: false, categoryID: category.ID})

	// No filters: everything comes back, unavailable rows included.
	all, total, err := repo.ListProducts(ctx, ListInput{Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	name := ListInput{Filters: Filters{Name: "laptop"}, Page: pagination.Params{Page: 1, Limit: 10}}
	byName, total, err := repo.ListProducts(ctx, name)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, product := range byName {
		assert.Contains(t, product.Title, "laptop")
	}

	free := true
	byDelivery, total, err := repo.ListProducts(ctx, ListInput{
		Filters: Filters{FreeDelivery: &free},
		Page:    pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, product := range byDelivery {
		assert.True(t, product.FreeDelivery)
	}
}

func TestListProductsPriceBoundsAreInclusive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Books", nil)
	seedProduct(t, db, productSeed{title: "Cheap", price: "10.00", count: 1, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "Exact", price: "50.00", count: 1, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "Pricey", price: "90.00", count: 1, available: true, categoryID: category.ID})

	min := decimal.RequireFromString("50.00")
	max := decimal.RequireFromString("50.00")
	products, total, err := repo.ListProducts(ctx, ListInput{
		Filters: Filters{MinPrice: &min, MaxPrice: &max},
		Page:    pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Exact", products[0].Title)
}

func TestListProductsCategoryIncludesSubcategories(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	parent := seedCategory(t, db, "Computers", nil)
	child := seedCategory(t, db, "Laptops", &parent.ID)
	other := seedCategory(t, db, "Garden", nil)

	seedProduct(t, db, productSeed{title: "Desktop", price: "900.00", count: 1, available: true, categoryID: parent.ID})
	seedProduct(t, db, productSeed{title: "Ultrabook", price: "1200.00", count: 1, available: true, categoryID: child.ID})
	seedProduct(t, db, productSeed{title: "Shovel", price: "20.00", count: 1, available: true, categoryID: other.ID})

	products, total, err := repo.ListProducts(ctx, ListInput{
		Filters: Filters{CategoryID: &parent.ID},
		Page:    pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	titles := []string{products[0].Title, products[1].Title}
	assert.ElementsMatch(t, []string{"Desktop", "Ultrabook"}, titles)
}

func TestListProductsSortDirection(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Audio", nil)
	seedProduct(t, db, productSeed{title: "Mid", price: "50.00", count: 1, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "Low", price: "10.00", count: 1, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "High", price: "99.00", count: 1, available: true, categoryID: category.ID})

	asc, _, err := repo.ListProducts(ctx, ListInput{Sort: "price", Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, "Low", asc[0].Title)
	assert.Equal(t, "High", asc[2].Title)

	desc, _, err := repo.ListProducts(ctx, ListInput{Sort: "price", SortType: "dec", Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, desc, 3)
	assert.Equal(t, "High", desc[0].Title)
	assert.Equal(t, "Low", desc[2].Title)
}

func TestListProductsPagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Bulk", nil)
	for i := 0; i < 5; i++ {
		seedProduct(t, db, productSeed{
			title:      fmt.Sprintf("Item %d", i),
			price:      "10.00",
			count:      1,
			available:  true,
			categoryID: category.ID,
			createdAt:  time.Now().Add(time.Duration(i) * time.Second),
		})
	}

	pageTwo, total, err := repo.ListProducts(ctx, ListInput{Sort: "date", Page: pagination.Params{Page: 2, Limit: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, pageTwo, 2)
	assert.Equal(t, "Item 2", pageTwo[0].Title)
}

func TestListSalesHonorsWindow(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	category := seedCategory(t, db, "Deals", nil)
	active := seedProduct(t, db, productSeed{title: "Active sale", price: "100.00", count: 1, available: true, categoryID: category.ID})
	expired := seedProduct(t, db, productSeed{title: "Expired sale", price: "100.00", count: 1, available: true, categoryID: category.ID})
	seedProduct(t, db, productSeed{title: "No sale", price: "100.00", count: 1, available: true, categoryID: category.ID})

	salePrice := decimal.RequireFromString("80.00")
	from := now.Add(-24 * time.Hour)
	activeTo := now.Add(24 * time.Hour)
	expiredTo := now.Add(-time.Hour)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", active.ID).Updates(map[string]any{
		"sale_price": salePrice, "sale_from": from, "sale_to": activeTo,
	}).Error)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", expired.ID).Updates(map[string]any{
		"sale_price": salePrice, "sale_from": from, "sale_to": expiredTo,
	}).Error)

	products, total, err := repo.ListSales(ctx, pagination.Params{Page: 1, Limit: 10}, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Active sale", products[0].Title)
}

func TestListTagsScopedToCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Sport", nil)
	inCategory := models.Tag{ID: uuid.New(), Name: "running"}
	loose := models.Tag{ID: uuid.New(), Name: "misc"}
	require.NoError(t, db.Create(&inCategory).Error)
	require.NoError(t, db.Create(&loose).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO category_tags (category_id, tag_id) VALUES (?, ?)",
		category.ID, inCategory.ID,
	).Error)

	all, err := repo.ListTags(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := repo.ListTags(ctx, &category.ID)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "running", scoped[0].Name)
}

func TestFindProductByIDPreloadsRelations(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	category := seedCategory(t, db, "Phones", nil)
	product := seedProduct(t, db, productSeed{title: "Phone", price: "500.00", count: 2, available: true, categoryID: category.ID})

	image := models.Image{ID: uuid.New(), Src: "/img/phone.png", Alt: "phone"}
	require.NoError(t, db.Create(&image).Error)
	require.NoError(t, db.Exec(
		"INSERT INTO product_images (product_id, image_id) VALUES (?, ?)",
		product.ID, image.ID,
	).Error)
	spec := models.Specification{ID: uuid.New(), ProductID: product.ID, Name: "Screen", Value: "6.1 inch"}
	require.NoError(t, db.Create(&spec).Error)
	review := models.Review{ID: uuid.New(), ProductID: product.ID, Author: "kim", Rate: 4}
	require.NoError(t, db.Create(&review).Error)

	loaded, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Images, 1)
	assert.Len(t, loaded.Specifications, 1)
	assert.Len(t, loaded.Reviews, 1)

	_, err = repo.FindProductByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
