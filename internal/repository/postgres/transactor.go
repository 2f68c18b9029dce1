package postgres

import (
	"github.com/osamo/dreamshops/internal/repository"
	"github.com/osamo/dreamshops/pkg/database"
)

// Compile-time checks that the PostgreSQL types satisfy the repository interfaces.
var (
	_ repository.CategoryRepository = (*CategoryRepository)(nil)
	_ repository.ProductRepository  = (*ProductRepository)(nil)
	_ repository.ImageRepository    = (*ImageRepository)(nil)
	_ repository.Transactor         = (*database.Transactor)(nil)
)

// NewTransactor returns a Transactor whose transactions are picked up by
// every repository in this package through the context.
func NewTransactor(db database.TxBeginner) repository.Transactor {
	return database.NewTransactor(db)
}
