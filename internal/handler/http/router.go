package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osamo/dreamshops/pkg/health"
	"github.com/osamo/dreamshops/pkg/middleware"
)

// RouterConfig holds everything NewRouter mounts.
type RouterConfig struct {
	ServiceName    string
	APIPrefix      string
	MaxUploadBytes int64

	Categories CategoryService
	Products   ProductService
	Images     ImageService

	Health *health.Handler
	// Metrics is optional; requests are not instrumented when nil.
	Metrics  *middleware.HTTPMetrics
	Gatherer prometheus.Gatherer
	// RateLimit is optional; the API is not throttled when nil.
	RateLimit *middleware.RateLimiter

	CORS       middleware.CORSConfig
	PprofCIDRs []string
}

// NewRouter creates a chi router with all catalog routes registered under
// cfg.APIPrefix.
func NewRouter(cfg RouterConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Handler)
	}
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	categoryHandler := NewCategoryHandler(cfg.Categories, logger)
	productHandler := NewProductHandler(cfg.Products, logger)
	imageHandler := NewImageHandler(cfg.Images, cfg.MaxUploadBytes, logger)

	api := func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit.Handler)
		}
		r.Use(ContentTypeJSON)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/all", categoryHandler.ListCategories)
			r.Post("/add", categoryHandler.AddCategory)
			r.Get("/category/{id}/category", categoryHandler.GetCategory)
			r.Get("/by-name/{name}", categoryHandler.GetCategoryByName)
			r.Delete("/category/{id}/delete", categoryHandler.DeleteCategory)
			r.Get("/category/{id}/update", categoryHandler.UpdateCategory)
			r.Put("/category/{id}/update", categoryHandler.UpdateCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/all", productHandler.ListProducts)
			r.Post("/add", productHandler.AddProduct)
			r.Get("/product/{id}/product", productHandler.GetProduct)
			r.Put("/product/{id}/update", productHandler.UpdateProduct)
			r.Delete("/product/{id}/delete", productHandler.DeleteProduct)

			r.Get("/by/brand-and-name", productHandler.ProductsByBrandAndName)
			r.Get("/by/category-and-brand", productHandler.ProductsByCategoryAndBrand)
			r.Get("/by-brand", productHandler.ProductsByBrand)
			r.Get("/count/by-brand/and-name", productHandler.CountProductsByBrandAndName)
			r.Get("/{name}/products", productHandler.ProductsByName)
			r.Get("/{category}/all/products", productHandler.ProductsByCategory)
		})

		r.Route("/images", func(r chi.Router) {
			r.Post("/upload", imageHandler.UploadImages)
			r.With(middleware.CacheControl("private, no-cache", 0)).
				Get("/download/{id}", imageHandler.DownloadImage)
			r.Put("/image/{id}/update", imageHandler.UpdateImage)
			r.Delete("/image/{id}/delete", imageHandler.DeleteImage)
		})
	}

	if cfg.APIPrefix == "" {
		r.Group(api)
	} else {
		r.Route(cfg.APIPrefix, api)
	}

	return r
}
