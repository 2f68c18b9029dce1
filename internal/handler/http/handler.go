package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/pkg/httputil"
	"github.com/osamo/dreamshops/pkg/validator"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// CategoryService is the category behaviour the handlers depend on.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	AddCategory(ctx context.Context, input domain.AddCategoryInput) (*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, input domain.UpdateCategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// ProductService is the product behaviour the handlers depend on.
type ProductService interface {
	AddProduct(ctx context.Context, input domain.AddProductInput) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input domain.UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	ProductsByBrand(ctx context.Context, brand string) ([]domain.Product, error)
	ProductsByCategoryAndBrand(ctx context.Context, category, brand string) ([]domain.Product, error)
	ProductsByName(ctx context.Context, name string) ([]domain.Product, error)
	ProductsByBrandAndName(ctx context.Context, brand, name string) ([]domain.Product, error)
	CountProductsByBrandAndName(ctx context.Context, brand, name string) (int64, error)
	ConvertToDTO(ctx context.Context, product *domain.Product) (domain.ProductDTO, error)
	ConvertedProducts(ctx context.Context, products []domain.Product) ([]domain.ProductDTO, error)
}

// ImageService is the image behaviour the handlers depend on.
type ImageService interface {
	SaveImages(ctx context.Context, productID int64, files []domain.UploadedFile) ([]domain.ImageDTO, error)
	GetImage(ctx context.Context, id int64) (*domain.Image, error)
	UpdateImage(ctx context.Context, id int64, file domain.UploadedFile) (*domain.ImageDTO, error)
	DeleteImage(ctx context.Context, id int64) error
}

// decodeJSON reads a size-limited JSON body into dst and validates it. On
// failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "INVALID_INPUT", "invalid request body: "+err.Error())
		return false
	}
	if err := validator.Validate(dst); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}
	return true
}
