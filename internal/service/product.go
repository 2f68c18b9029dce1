package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osamo/dreamshops/internal/cache"
	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/internal/event"
	"github.com/osamo/dreamshops/internal/repository"
	apperrors "github.com/osamo/dreamshops/pkg/errors"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	products     repository.ProductRepository
	categories   repository.CategoryRepository
	images       repository.ImageRepository
	tx           repository.Transactor
	cache        cache.ProductCache
	publisher    event.Publisher
	imageBaseURL string
	logger       *slog.Logger
}

// ProductServiceDeps groups the collaborators of a ProductService.
type ProductServiceDeps struct {
	Products   repository.ProductRepository
	Categories repository.CategoryRepository
	Images     repository.ImageRepository
	Tx         repository.Transactor
	Cache      cache.ProductCache
	Publisher  event.Publisher

	// ImageBaseURL prefixes image ids to form download URLs.
	ImageBaseURL string
}

// NewProductService creates a new product service.
func NewProductService(deps ProductServiceDeps, logger *slog.Logger) *ProductService {
	return &ProductService{
		products:     deps.Products,
		categories:   deps.Categories,
		images:       deps.Images,
		tx:           deps.Tx,
		cache:        deps.Cache,
		publisher:    deps.Publisher,
		imageBaseURL: deps.ImageBaseURL,
		logger:       logger,
	}
}

// AddProduct creates a product, reusing the category named in the input or
// creating it. Both writes share one transaction.
func (s *ProductService) AddProduct(ctx context.Context, input domain.AddProductInput) (*domain.Product, error) {
	if input.Category == nil || strings.TrimSpace(input.Category.Name) == "" {
		return nil, apperrors.InvalidInput("product category name is required")
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(input.Name),
		Brand:       strings.TrimSpace(input.Brand),
		Price:       input.Price,
		Inventory:   input.Inventory,
		Description: input.Description,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		category, err := s.categories.FindOrCreate(ctx, strings.TrimSpace(input.Category.Name))
		if err != nil {
			return err
		}
		product.Category = *category
		return s.products.Create(ctx, product)
	})
	if err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}

	if err := s.publisher.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.Int64("category_id", product.Category.ID),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID, serving it from the cache when
// possible.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "product cache read failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}

	if err := s.cache.Set(ctx, product); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	return product, nil
}

// UpdateProduct applies the non-nil fields of input to an existing product.
// A changed category name is resolved with find-or-create.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input domain.UpdateProductInput) (*domain.Product, error) {
	var product *domain.Product

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.products.GetByID(ctx, id)
		if err != nil {
			return err
		}

		input.Apply(product)

		if input.CategoryChanged(product) {
			category, err := s.categories.FindOrCreate(ctx, strings.TrimSpace(input.Category.Name))
			if err != nil {
				return err
			}
			product.Category = *category
		}

		return s.products.Update(ctx, product)
	})
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidate(ctx, id)

	if err := s.publisher.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", id),
	)

	return product, nil
}

// DeleteProduct removes a product and its images.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.invalidate(ctx, id)

	if err := s.publisher.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}

// ListProducts returns every product.
func (s *ProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, "list products", repository.ProductFilter{})
}

// ProductsByCategory returns the products in the named category.
func (s *ProductService) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.list(ctx, "list products by category", repository.ProductFilter{CategoryName: &category})
}

// ProductsByBrand returns the products of a brand.
func (s *ProductService) ProductsByBrand(ctx context.Context, brand string) ([]domain.Product, error) {
	return s.list(ctx, "list products by brand", repository.ProductFilter{Brand: &brand})
}

// ProductsByCategoryAndBrand returns the products of a brand within a category.
func (s *ProductService) ProductsByCategoryAndBrand(ctx context.Context, category, brand string) ([]domain.Product, error) {
	return s.list(ctx, "list products by category and brand", repository.ProductFilter{
		CategoryName: &category,
		Brand:        &brand,
	})
}

// ProductsByName returns the products whose name matches exactly.
func (s *ProductService) ProductsByName(ctx context.Context, name string) ([]domain.Product, error) {
	return s.list(ctx, "list products by name", repository.ProductFilter{Name: &name})
}

// ProductsByBrandAndName returns the products matching both brand and name.
func (s *ProductService) ProductsByBrandAndName(ctx context.Context, brand, name string) ([]domain.Product, error) {
	return s.list(ctx, "list products by brand and name", repository.ProductFilter{
		Brand: &brand,
		Name:  &name,
	})
}

// CountProductsByBrandAndName counts the products matching both brand and name.
func (s *ProductService) CountProductsByBrandAndName(ctx context.Context, brand, name string) (int64, error) {
	n, err := s.products.Count(ctx, repository.ProductFilter{Brand: &brand, Name: &name})
	if err != nil {
		return 0, fmt.Errorf("count products by brand and name: %w", err)
	}
	return n, nil
}

// ConvertToDTO maps a product and its images to a ProductDTO.
func (s *ProductService) ConvertToDTO(ctx context.Context, product *domain.Product) (domain.ProductDTO, error) {
	dtos, err := s.ConvertedProducts(ctx, []domain.Product{*product})
	if err != nil {
		return domain.ProductDTO{}, err
	}
	return dtos[0], nil
}

// ConvertedProducts maps products to DTOs, loading the images of all of
// them with a single query.
func (s *ProductService) ConvertedProducts(ctx context.Context, products []domain.Product) ([]domain.ProductDTO, error) {
	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	images, err := s.images.ListByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load product images: %w", err)
	}

	byProduct := make(map[int64][]domain.ImageDTO, len(products))
	for i := range images {
		img := &images[i]
		byProduct[img.ProductID] = append(byProduct[img.ProductID], img.ToDTO(s.imageBaseURL))
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = products[i].ToDTO(byProduct[products[i].ID])
	}
	return dtos, nil
}

func (s *ProductService) list(ctx context.Context, op string, filter repository.ProductFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *ProductService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate product cache",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
