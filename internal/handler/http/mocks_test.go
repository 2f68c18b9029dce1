package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/pkg/health"
	"github.com/osamo/dreamshops/pkg/httputil"
)

// Ensure mocks satisfy the handler interfaces at compile time.
var (
	_ CategoryService = (*mockCategoryService)(nil)
	_ ProductService  = (*mockProductService)(nil)
	_ ImageService    = (*mockImageService)(nil)
)

// --- Mock CategoryService ---

type mockCategoryService struct {
	mock.Mock
}

func (m *mockCategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCategoryService) AddCategory(ctx context.Context, input domain.AddCategoryInput) (*domain.Category, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) GetCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) UpdateCategory(ctx context.Context, id int64, input domain.UpdateCategoryInput) (*domain.Category, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *mockCategoryService) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock ProductService ---

type mockProductService struct {
	mock.Mock
}

func (m *mockProductService) AddProduct(ctx context.Context, input domain.AddProductInput) (*domain.Product, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) UpdateProduct(ctx context.Context, id int64, input domain.UpdateProductInput) (*domain.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductService) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductService) products(args mock.Arguments) ([]domain.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *mockProductService) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return m.products(m.Called(ctx, category))
}

func (m *mockProductService) ProductsByBrand(ctx context.Context, brand string) ([]domain.Product, error) {
	return m.products(m.Called(ctx, brand))
}

func (m *mockProductService) ProductsByCategoryAndBrand(ctx context.Context, category, brand string) ([]domain.Product, error) {
	return m.products(m.Called(ctx, category, brand))
}

func (m *mockProductService) ProductsByName(ctx context.Context, name string) ([]domain.Product, error) {
	return m.products(m.Called(ctx, name))
}

func (m *mockProductService) ProductsByBrandAndName(ctx context.Context, brand, name string) ([]domain.Product, error) {
	return m.products(m.Called(ctx, brand, name))
}

func (m *mockProductService) CountProductsByBrandAndName(ctx context.Context, brand, name string) (int64, error) {
	args := m.Called(ctx, brand, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductService) ConvertToDTO(ctx context.Context, p *domain.Product) (domain.ProductDTO, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(domain.ProductDTO), args.Error(1)
}

func (m *mockProductService) ConvertedProducts(ctx context.Context, products []domain.Product) ([]domain.ProductDTO, error) {
	args := m.Called(ctx, products)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductDTO), args.Error(1)
}

// --- Mock ImageService ---

type mockImageService struct {
	mock.Mock
}

func (m *mockImageService) SaveImages(ctx context.Context, productID int64, files []domain.UploadedFile) ([]domain.ImageDTO, error) {
	args := m.Called(ctx, productID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ImageDTO), args.Error(1)
}

func (m *mockImageService) GetImage(ctx context.Context, id int64) (*domain.Image, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Image), args.Error(1)
}

func (m *mockImageService) UpdateImage(ctx context.Context, id int64, file domain.UploadedFile) (*domain.ImageDTO, error) {
	args := m.Called(ctx, id, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImageDTO), args.Error(1)
}

func (m *mockImageService) DeleteImage(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Test Helpers ---

const testMaxUploadBytes = 1024

type testServer struct {
	categories *mockCategoryService
	products   *mockProductService
	images     *mockImageService
	router     http.Handler
}

func newTestServer() *testServer {
	s := &testServer{
		categories: new(mockCategoryService),
		products:   new(mockProductService),
		images:     new(mockImageService),
	}
	s.router = NewRouter(RouterConfig{
		ServiceName:    "dreamshops-test",
		APIPrefix:      "/api/v1",
		MaxUploadBytes: testMaxUploadBytes,
		Categories:     s.categories,
		Products:       s.products,
		Images:         s.images,
		Health:         health.NewHandler(),
	}, testLogger())
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		switch p := payload.(type) {
		case string:
			body = bytes.NewBufferString(p)
		default:
			raw, err := json.Marshal(p)
			require.NoError(t, err)
			body = bytes.NewReader(raw)
		}
	}
	return s.do(t, method, path, body, "application/json")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response[json.RawMessage] {
	t.Helper()
	var resp httputil.Response[json.RawMessage]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeData[T any](t *testing.T, resp httputil.Response[json.RawMessage]) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}
