package domain

import (
	"time"
)

// Category groups products under a unique name.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddCategoryInput holds the parameters for creating a category.
type AddCategoryInput struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

// UpdateCategoryInput holds the parameters for renaming a category.
type UpdateCategoryInput struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}
