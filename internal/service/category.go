package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osamo/dreamshops/internal/cache"
	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/internal/event"
	"github.com/osamo/dreamshops/internal/repository"
)

// CategoryService implements the business logic for category operations.
type CategoryService struct {
	repo      repository.CategoryRepository
	cache     cache.ProductCache
	publisher event.Publisher
	logger    *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	repo repository.CategoryRepository,
	productCache cache.ProductCache,
	publisher event.Publisher,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		repo:      repo,
		cache:     productCache,
		publisher: publisher,
		logger:    logger,
	}
}

// ListCategories returns every category.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// AddCategory creates a category. A duplicate name fails with AlreadyExists.
func (s *CategoryService) AddCategory(ctx context.Context, input domain.AddCategoryInput) (*domain.Category, error) {
	category := &domain.Category{Name: strings.TrimSpace(input.Name)}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}

	if err := s.publisher.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.Int64("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.Int64("category_id", category.ID),
		slog.String("name", category.Name),
	)

	return category, nil
}

// GetCategory retrieves a category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// GetCategoryByName retrieves a category by its exact name.
func (s *CategoryService) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	category, err := s.repo.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return category, nil
}

// UpdateCategory renames an existing category.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, input domain.UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	category.Name = strings.TrimSpace(input.Name)

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}

	// Cached products embed their category name.
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate product cache",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	if err := s.publisher.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.Int64("category_id", id),
		slog.String("name", category.Name),
	)

	return category, nil
}

// DeleteCategory removes a category. It fails with a conflict while any
// product still belongs to it.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := s.publisher.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.Int64("category_id", id),
	)

	return nil
}
