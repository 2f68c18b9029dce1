package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osamo/dreamshops/internal/domain"
	apperrors "github.com/osamo/dreamshops/pkg/errors"
)

type categoryFixture struct {
	repo      *mockCategoryRepository
	cache     *mockCache
	publisher *mockPublisher
	svc       *CategoryService
}

func newCategoryFixture() *categoryFixture {
	f := &categoryFixture{
		repo:      new(mockCategoryRepository),
		cache:     new(mockCache),
		publisher: new(mockPublisher),
	}
	f.svc = NewCategoryService(f.repo, f.cache, f.publisher, newTestLogger())
	return f
}

func TestListCategories_Success(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	categories := []domain.Category{{ID: 1, Name: "Shoes"}, {ID: 2, Name: "Hats"}}
	f.repo.On("ListAll", ctx).Return(categories, nil)

	result, err := f.svc.ListCategories(ctx)

	require.NoError(t, err)
	assert.Equal(t, categories, result)
	f.repo.AssertExpectations(t)
}

func TestListCategories_RepositoryError(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("ListAll", ctx).Return(nil, errors.New("connection refused"))

	_, err := f.svc.ListCategories(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list categories")
	assert.Equal(t, 500, apperrors.HTTPStatus(err))
}

func TestAddCategory_Success(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Shoes"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Category).ID = 1
	}).Return(nil)
	f.publisher.On("PublishCategoryCreated", ctx, mock.AnythingOfType("*domain.Category")).Return(nil)

	category, err := f.svc.AddCategory(ctx, domain.AddCategoryInput{Name: "  Shoes "})

	require.NoError(t, err)
	assert.Equal(t, int64(1), category.ID)
	assert.Equal(t, "Shoes", category.Name)
	f.repo.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestAddCategory_Duplicate(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Category")).
		Return(apperrors.AlreadyExists("category", "name", "Shoes"))

	category, err := f.svc.AddCategory(ctx, domain.AddCategoryInput{Name: "Shoes"})

	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
	f.publisher.AssertNotCalled(t, "PublishCategoryCreated", mock.Anything, mock.Anything)
}

func TestAddCategory_PublishFailureIsNotAnError(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Category")).Return(nil)
	f.publisher.On("PublishCategoryCreated", ctx, mock.AnythingOfType("*domain.Category")).
		Return(errors.New("broker down"))

	category, err := f.svc.AddCategory(ctx, domain.AddCategoryInput{Name: "Shoes"})

	require.NoError(t, err)
	assert.Equal(t, "Shoes", category.Name)
}

func TestGetCategory_NotFound(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(42)).Return(nil, apperrors.NotFound("category", int64(42)))

	category, err := f.svc.GetCategory(ctx, 42)

	assert.Nil(t, category)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetCategoryByName(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("GetByName", ctx, "Shoes").Return(&domain.Category{ID: 1, Name: "Shoes"}, nil)
	f.repo.On("GetByName", ctx, "Hats").Return(nil, apperrors.NotFoundBy("category", "name", "Hats"))

	category, err := f.svc.GetCategoryByName(ctx, " Shoes ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), category.ID)

	_, err = f.svc.GetCategoryByName(ctx, "Hats")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateCategory_Success(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(1)).Return(&domain.Category{ID: 1, Name: "Shoes"}, nil)
	f.repo.On("Update", ctx, mock.MatchedBy(func(c *domain.Category) bool {
		return c.ID == 1 && c.Name == "Footwear"
	})).Return(nil)
	f.cache.On("InvalidateAll", ctx).Return(nil)
	f.publisher.On("PublishCategoryUpdated", ctx, mock.AnythingOfType("*domain.Category")).Return(nil)

	category, err := f.svc.UpdateCategory(ctx, 1, domain.UpdateCategoryInput{Name: "Footwear"})

	require.NoError(t, err)
	assert.Equal(t, "Footwear", category.Name)
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestUpdateCategory_NotFound(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(9)).Return(nil, apperrors.NotFound("category", int64(9)))

	_, err := f.svc.UpdateCategory(ctx, 9, domain.UpdateCategoryInput{Name: "Footwear"})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.cache.AssertNotCalled(t, "InvalidateAll", mock.Anything)
}

func TestUpdateCategory_CacheFailureIsNotAnError(t *testing.T) {
	f := newCategoryFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, int64(1)).Return(&domain.Category{ID: 1, Name: "Shoes"}, nil)
	f.repo.On("Update", ctx, mock.Anything).Return(nil)
	f.cache.On("InvalidateAll", ctx).Return(errors.New("redis down"))
	f.publisher.On("PublishCategoryUpdated", ctx, mock.Anything).Return(nil)

	_, err := f.svc.UpdateCategory(ctx, 1, domain.UpdateCategoryInput{Name: "Footwear"})

	assert.NoError(t, err)
}

func TestDeleteCategory(t *testing.T) {
	tests := []struct {
		name      string
		repoErr   error
		wantErr   error
		published bool
	}{
		{"success", nil, nil, true},
		{"not found", apperrors.NotFound("category", int64(1)), apperrors.ErrNotFound, false},
		{"still has products", apperrors.Conflict("category with id 1 still has products"), apperrors.ErrConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryFixture()
			ctx := context.Background()

			f.repo.On("Delete", ctx, int64(1)).Return(tt.repoErr)
			f.publisher.On("PublishCategoryDeleted", ctx, int64(1)).Return(nil)

			err := f.svc.DeleteCategory(ctx, 1)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			if tt.published {
				f.publisher.AssertCalled(t, "PublishCategoryDeleted", ctx, int64(1))
			} else {
				f.publisher.AssertNotCalled(t, "PublishCategoryDeleted", mock.Anything, mock.Anything)
			}
		})
	}
}
