package cache

import (
	"context"
	"errors"

	"github.com/osamo/dreamshops/internal/domain"
)

// ErrMiss is returned by Get when the product is not cached.
var ErrMiss = errors.New("cache miss")

// ProductCache is a read-through cache of products by id.
type ProductCache interface {
	// Get returns the cached product or ErrMiss.
	Get(ctx context.Context, id int64) (*domain.Product, error)

	// Set caches p under its id.
	Set(ctx context.Context, p *domain.Product) error

	// Invalidate removes the given products.
	Invalidate(ctx context.Context, ids ...int64) error

	// InvalidateAll removes every cached product. Used when a change to a
	// category can affect any number of products.
	InvalidateAll(ctx context.Context) error
}

// Nop is a ProductCache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, int64) (*domain.Product, error) { return nil, ErrMiss }
func (Nop) Set(context.Context, *domain.Product) error           { return nil }
func (Nop) Invalidate(context.Context, ...int64) error           { return nil }
func (Nop) InvalidateAll(context.Context) error                  { return nil }
