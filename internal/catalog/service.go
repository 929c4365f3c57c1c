package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/megano/shop-backend/pkg/db/models"
	pkgerrors "github.com/megano/shop-backend/pkg/errors"
	"github.com/megano/shop-backend/pkg/pagination"
)

const (
	popularLimit = 8
	limitedLimit = 16
	bannerLimit  = 3
)

// Service exposes the catalog read operations.
type Service interface {
	List(ctx context.Context, input ListInput) (*ProductPage, error)
	Product(ctx context.Context, id uuid.UUID) (*FullProduct, error)
	Sales(ctx context.Context, params pagination.Params) (*ProductPage, error)
	Popular(ctx context.Context) ([]ShortProduct, error)
	Limited(ctx context.Context) ([]ShortProduct, error)
	Banners(ctx context.Context) ([]Banner, error)
	Categories(ctx context.Context) ([]CategoryView, error)
	Tags(ctx context.Context, categoryID *uuid.UUID) ([]TagView, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ProductPage, error) {
	if input.Sort != "" {
		if _, ok := sortColumns[input.Sort]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported sort field").
				WithDetails(map[string]any{"sort": input.Sort})
		}
	}

	products, total, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return productPage(products, input.Page, total), nil
}

func (s *service) Product(ctx context.Context, id uuid.UUID) (*FullProduct, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	full := FullProductFromModel(*product)
	return &full, nil
}

func (s *service) Sales(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	products, total, err := s.repo.ListSales(ctx, params, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}
	return productPage(products, params, total), nil
}

func (s *service) Popular(ctx context.Context) ([]ShortProduct, error) {
	products, err := s.repo.ListPopular(ctx, popularLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list popular products")
	}
	return shortProducts(products), nil
}

func (s *service) Limited(ctx context.Context) ([]ShortProduct, error) {
	products, err := s.repo.ListLimited(ctx, limitedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list limited products")
	}
	return shortProducts(products), nil
}

func (s *service) Banners(ctx context.Context) ([]Banner, error) {
	products, err := s.repo.ListBanners(ctx, bannerLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list banners")
	}
	banners := make([]Banner, 0, len(products))
	for _, product := range products {
		images := make([]ImageView, 0, len(product.Images))
		for _, img := range product.Images {
			images = append(images, ImageView{Src: img.Src, Alt: img.Alt})
		}
		banners = append(banners, Banner{
			ID:     product.ID,
			Title:  product.Title,
			Price:  product.Price,
			Images: images,
		})
	}
	return banners, nil
}

func (s *service) Categories(ctx context.Context) ([]CategoryView, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	views := make([]CategoryView, 0, len(categories))
	for _, category := range categories {
		view := categoryView(category)
		subs := make([]CategoryView, 0, len(category.Subcategories))
		for _, sub := range category.Subcategories {
			subs = append(subs, categoryView(sub))
		}
		view.Subcategories = subs
		views = append(views, view)
	}
	return views, nil
}

func (s *service) Tags(ctx context.Context, categoryID *uuid.UUID) ([]TagView, error) {
	tags, err := s.repo.ListTags(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	views := make([]TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, TagView{ID: tag.ID, Name: tag.Name})
	}
	return views, nil
}

func categoryView(category models.Category) CategoryView {
	view := CategoryView{
		ID:            category.ID,
		Title:         category.Title,
		Subcategories: []CategoryView{},
	}
	if category.Image != nil {
		view.Image = &ImageView{Src: category.Image.Src, Alt: category.Image.Alt}
	}
	return view
}

func productPage(products []models.Product, params pagination.Params, total int64) *ProductPage {
	page := pagination.Resolve(params, total)
	return &ProductPage{
		Items:       shortProducts(products),
		CurrentPage: page.Current,
		LastPage:    page.LastPage,
	}
}

func shortProducts(products []models.Product) []ShortProduct {
	items := make([]ShortProduct, 0, len(products))
	for _, product := range products {
		items = append(items, ShortProductFromModel(product))
	}
	return items
}
