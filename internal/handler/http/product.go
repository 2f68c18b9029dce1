package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/pkg/httputil"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /products/all.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	dtos, err := h.service.ConvertedProducts(r.Context(), products)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, "Success!", dtos)
}

// GetProduct handles GET /products/product/{id}/product.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeProduct(w, r, "Success!", product)
}

// AddProduct handles POST /products/add.
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.AddProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.AddProduct(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeProduct(w, r, "Add Product Success", product)
}

// UpdateProduct handles PUT /products/product/{id}/update. Absent fields
// are left unchanged.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req domain.UpdateProductInput
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeProduct(w, r, "Updated successfully!", product)
}

// DeleteProduct handles DELETE /products/product/{id}/delete.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Deleted Successfully")
}

// ProductsByBrandAndName handles GET /products/by/brand-and-name.
func (h *ProductHandler) ProductsByBrandAndName(w http.ResponseWriter, r *http.Request) {
	brand, ok := requiredQuery(w, r, "brandName")
	if !ok {
		return
	}
	name, ok := requiredQuery(w, r, "productName")
	if !ok {
		return
	}

	products, err := h.service.ProductsByBrandAndName(r.Context(), brand, name)
	h.writeSearch(w, r, products, err)
}

// ProductsByCategoryAndBrand handles GET /products/by/category-and-brand.
func (h *ProductHandler) ProductsByCategoryAndBrand(w http.ResponseWriter, r *http.Request) {
	category, ok := requiredQuery(w, r, "category")
	if !ok {
		return
	}
	brand, ok := requiredQuery(w, r, "brand")
	if !ok {
		return
	}

	products, err := h.service.ProductsByCategoryAndBrand(r.Context(), category, brand)
	h.writeSearch(w, r, products, err)
}

// ProductsByName handles GET /products/{name}/products.
func (h *ProductHandler) ProductsByName(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ProductsByName(r.Context(), chi.URLParam(r, "name"))
	h.writeSearch(w, r, products, err)
}

// ProductsByBrand handles GET /products/by-brand.
func (h *ProductHandler) ProductsByBrand(w http.ResponseWriter, r *http.Request) {
	brand, ok := requiredQuery(w, r, "brandName")
	if !ok {
		return
	}

	products, err := h.service.ProductsByBrand(r.Context(), brand)
	h.writeSearch(w, r, products, err)
}

// ProductsByCategory handles GET /products/{category}/all/products.
func (h *ProductHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ProductsByCategory(r.Context(), chi.URLParam(r, "category"))
	h.writeSearch(w, r, products, err)
}

// CountProductsByBrandAndName handles GET /products/count/by-brand/and-name.
func (h *ProductHandler) CountProductsByBrandAndName(w http.ResponseWriter, r *http.Request) {
	brand, ok := requiredQuery(w, r, "brand")
	if !ok {
		return
	}
	name, ok := requiredQuery(w, r, "name")
	if !ok {
		return
	}

	count, err := h.service.CountProductsByBrandAndName(r.Context(), brand, name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, "Success", count)
}

func (h *ProductHandler) writeProduct(w http.ResponseWriter, r *http.Request, message string, product *domain.Product) {
	dto, err := h.service.ConvertToDTO(r.Context(), product)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, message, dto)
}

// writeSearch converts a search result to DTOs. An empty result is a 404.
func (h *ProductHandler) writeSearch(w http.ResponseWriter, r *http.Request, products []domain.Product, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if len(products) == 0 {
		httputil.WriteMessage(w, http.StatusNotFound, "Products not found")
		return
	}

	dtos, err := h.service.ConvertedProducts(r.Context(), products)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteOK(w, "Success", dtos)
}

func requiredQuery(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		httputil.WriteBadRequest(w, "INVALID_PARAMETER", "query parameter "+key+" is required")
		return "", false
	}
	return v, true
}
