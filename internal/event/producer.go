package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/osamo/dreamshops/internal/domain"
	pkgkafka "github.com/osamo/dreamshops/pkg/kafka"
	"github.com/osamo/dreamshops/pkg/logger"
)

// Kafka topics for catalog events, one per aggregate so that events for the
// same entity keep their order.
var (
	TopicProduct  = pkgkafka.Topic("catalog", "product")
	TopicCategory = pkgkafka.Topic("catalog", "category")
	TopicImage    = pkgkafka.Topic("catalog", "image")
)

// Event types.
const (
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
	ImageUploaded   = "image.uploaded"
	ImageUpdated    = "image.updated"
	ImageDeleted    = "image.deleted"
)

// Aggregate type constants.
const (
	AggregateTypeProduct  = "product"
	AggregateTypeCategory = "category"
	AggregateTypeImage    = "image"
)

// Source identifier for events originating from this service.
const Source = "dreamshops-catalog"

// ProductData is the payload for product.created and product.updated events.
type ProductData struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	Price        decimal.Decimal `json:"price"`
	Inventory    int             `json:"inventory"`
	CategoryID   int64           `json:"category_id"`
	CategoryName string          `json:"category_name"`
}

// CategoryData is the payload for category events.
type CategoryData struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// ImageData is the payload for image events.
type ImageData struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	FileName  string `json:"file_name,omitempty"`
	FileType  string `json:"file_type,omitempty"`
	Size      int64  `json:"size,omitempty"`
}

// DeletedData is the payload for deletions.
type DeletedData struct {
	ID int64 `json:"id"`
}

// Publisher publishes catalog domain events. Callers log failures rather
// than failing the request.
type Publisher interface {
	PublishProductCreated(ctx context.Context, p *domain.Product) error
	PublishProductUpdated(ctx context.Context, p *domain.Product) error
	PublishProductDeleted(ctx context.Context, id int64) error
	PublishCategoryCreated(ctx context.Context, c *domain.Category) error
	PublishCategoryUpdated(ctx context.Context, c *domain.Category) error
	PublishCategoryDeleted(ctx context.Context, id int64) error
	PublishImageUploaded(ctx context.Context, img *domain.Image) error
	PublishImageUpdated(ctx context.Context, img *domain.Image) error
	PublishImageDeleted(ctx context.Context, img *domain.Image) error
}

// EventWriter is the part of *pkgkafka.Producer used here.
type EventWriter interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  EventWriter
	logger *slog.Logger
}

// NewProducer creates a new catalog event producer.
func NewProducer(kafka EventWriter, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateType string, id int64, data any) error {
	aggregateID := strconv.FormatInt(id, 10)

	event, err := pkgkafka.NewEvent(eventType, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx))

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published "+eventType+" event",
		slog.String(aggregateType+"_id", aggregateID),
	)

	return nil
}

func productData(pr *domain.Product) ProductData {
	return ProductData{
		ID:           pr.ID,
		Name:         pr.Name,
		Brand:        pr.Brand,
		Price:        pr.Price,
		Inventory:    pr.Inventory,
		CategoryID:   pr.Category.ID,
		CategoryName: pr.Category.Name,
	}
}

func imageData(img *domain.Image) ImageData {
	return ImageData{
		ID:        img.ID,
		ProductID: img.ProductID,
		FileName:  img.FileName,
		FileType:  img.FileType,
		Size:      img.Size,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, pr *domain.Product) error {
	return p.publish(ctx, TopicProduct, ProductCreated, AggregateTypeProduct, pr.ID, productData(pr))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, pr *domain.Product) error {
	return p.publish(ctx, TopicProduct, ProductUpdated, AggregateTypeProduct, pr.ID, productData(pr))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicProduct, ProductDeleted, AggregateTypeProduct, id, DeletedData{ID: id})
}

// PublishCategoryCreated publishes a category.created event.
func (p *Producer) PublishCategoryCreated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategory, CategoryCreated, AggregateTypeCategory, c.ID, CategoryData{ID: c.ID, Name: c.Name})
}

// PublishCategoryUpdated publishes a category.updated event.
func (p *Producer) PublishCategoryUpdated(ctx context.Context, c *domain.Category) error {
	return p.publish(ctx, TopicCategory, CategoryUpdated, AggregateTypeCategory, c.ID, CategoryData{ID: c.ID, Name: c.Name})
}

// PublishCategoryDeleted publishes a category.deleted event.
func (p *Producer) PublishCategoryDeleted(ctx context.Context, id int64) error {
	return p.publish(ctx, TopicCategory, CategoryDeleted, AggregateTypeCategory, id, DeletedData{ID: id})
}

// PublishImageUploaded publishes an image.uploaded event.
func (p *Producer) PublishImageUploaded(ctx context.Context, img *domain.Image) error {
	return p.publish(ctx, TopicImage, ImageUploaded, AggregateTypeImage, img.ID, imageData(img))
}

// PublishImageUpdated publishes an image.updated event.
func (p *Producer) PublishImageUpdated(ctx context.Context, img *domain.Image) error {
	return p.publish(ctx, TopicImage, ImageUpdated, AggregateTypeImage, img.ID, imageData(img))
}

// PublishImageDeleted publishes an image.deleted event.
func (p *Producer) PublishImageDeleted(ctx context.Context, img *domain.Image) error {
	return p.publish(ctx, TopicImage, ImageDeleted, AggregateTypeImage, img.ID, ImageData{ID: img.ID, ProductID: img.ProductID})
}
