package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Every product belongs to
// exactly one category.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryRef names the category a product belongs to. An unknown name
// creates the category.
type CategoryRef struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// AddProductInput holds the parameters for creating a product. Price and
// inventory bounds match the NUMERIC(12,2) and INTEGER columns.
type AddProductInput struct {
	Name        string          `json:"name" validate:"required,notblank,max=255"`
	Brand       string          `json:"brand" validate:"max=255"`
	Price       decimal.Decimal `json:"price" validate:"dgte=0,dlte=9999999999.99,dscale=2"`
	Inventory   int             `json:"inventory" validate:"gte=0,lte=2147483647"`
	Description string          `json:"description"`
	Category    *CategoryRef    `json:"category" validate:"required"`
}

// UpdateProductInput holds a partial product update. Nil fields are left
// unchanged.
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,notblank,max=255"`
	Brand       *string          `json:"brand" validate:"omitempty,max=255"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,dgte=0,dlte=9999999999.99,dscale=2"`
	Inventory   *int             `json:"inventory" validate:"omitempty,gte=0,lte=2147483647"`
	Description *string          `json:"description"`
	Category    *CategoryRef     `json:"category"`
}

// Apply copies the non-nil fields onto p. The category is resolved by the
// caller.
func (in *UpdateProductInput) Apply(p *Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Inventory != nil {
		p.Inventory = *in.Inventory
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
}

// CategoryChanged reports whether the update names a category other than
// the product's current one.
func (in *UpdateProductInput) CategoryChanged(p *Product) bool {
	return in.Category != nil && strings.TrimSpace(in.Category.Name) != p.Category.Name
}

// ProductDTO is the API representation of a product with its images.
type ProductDTO struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	Description string          `json:"description"`
	Category    CategoryDTO     `json:"category"`
	Images      []ImageDTO      `json:"images"`
}

// CategoryDTO is the category reference embedded in a ProductDTO.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ToDTO maps p and its images to a ProductDTO. Images is never nil.
func (p *Product) ToDTO(images []ImageDTO) ProductDTO {
	if images == nil {
		images = []ImageDTO{}
	}
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Brand:       p.Brand,
		Price:       p.Price,
		Inventory:   p.Inventory,
		Description: p.Description,
		Category:    CategoryDTO{ID: p.Category.ID, Name: p.Category.Name},
		Images:      images,
	}
}
