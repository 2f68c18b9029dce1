package repository

import (
	"context"

	"github.com/osamo/dreamshops/internal/domain"
)

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category and fills in its id and timestamps.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// GetByName retrieves a category by its exact name.
	GetByName(ctx context.Context, name string) (*domain.Category, error)

	// FindOrCreate returns the category with the given name, creating it
	// atomically when absent.
	FindOrCreate(ctx context.Context, name string) (*domain.Category, error)

	// ListAll returns every category ordered by name.
	ListAll(ctx context.Context) ([]domain.Category, error)

	// Update renames an existing category.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category. It fails with a conflict while products
	// still reference it.
	Delete(ctx context.Context, id int64) error
}

// ProductFilter narrows product listings. Nil fields are not filtered on;
// set fields must match exactly and are combined with AND.
type ProductFilter struct {
	Name         *string
	Brand        *string
	CategoryName *string
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product and fills in its id and timestamps.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product and its category by the product identifier.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// List returns products matching the filter. The result is never nil.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)

	// Count returns the number of products matching the filter.
	Count(ctx context.Context, filter ProductFilter) (int64, error)

	// Update modifies an existing product in the store.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes a product and, through the foreign key, its images.
	Delete(ctx context.Context, id int64) error
}

// ImageRepository defines the interface for image persistence operations.
type ImageRepository interface {
	// Create inserts a new image and fills in its id and timestamps.
	Create(ctx context.Context, image *domain.Image) error

	// GetByID retrieves an image including its payload.
	GetByID(ctx context.Context, id int64) (*domain.Image, error)

	// ListByProductIDs returns image metadata, without payloads, for the
	// given products ordered by id.
	ListByProductIDs(ctx context.Context, productIDs []int64) ([]domain.Image, error)

	// Update replaces the file of an existing image.
	Update(ctx context.Context, image *domain.Image) error

	// Delete removes an image by its identifier.
	Delete(ctx context.Context, id int64) error
}

// Transactor runs fn in a transaction shared by every repository call made
// with the context it receives.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
