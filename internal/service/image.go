package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/internal/event"
	"github.com/osamo/dreamshops/internal/repository"
	apperrors "github.com/osamo/dreamshops/pkg/errors"
)

// ImageService implements the business logic for product images.
type ImageService struct {
	images       repository.ImageRepository
	products     repository.ProductRepository
	tx           repository.Transactor
	publisher    event.Publisher
	imageBaseURL string
	maxBytes     int64
	logger       *slog.Logger
}

// ImageServiceDeps groups the collaborators of an ImageService.
type ImageServiceDeps struct {
	Images    repository.ImageRepository
	Products  repository.ProductRepository
	Tx        repository.Transactor
	Publisher event.Publisher

	// ImageBaseURL prefixes image ids to form download URLs.
	ImageBaseURL string
	// MaxBytes is the largest accepted file.
	MaxBytes int64
}

// NewImageService creates a new image service.
func NewImageService(deps ImageServiceDeps, logger *slog.Logger) *ImageService {
	return &ImageService{
		images:       deps.Images,
		products:     deps.Products,
		tx:           deps.Tx,
		publisher:    deps.Publisher,
		imageBaseURL: deps.ImageBaseURL,
		maxBytes:     deps.MaxBytes,
		logger:       logger,
	}
}

// SaveImages stores every file as an image of the product. The batch is
// all or nothing: an invalid file or unknown product stores none of them.
func (s *ImageService) SaveImages(ctx context.Context, productID int64, files []domain.UploadedFile) ([]domain.ImageDTO, error) {
	if len(files) == 0 {
		return nil, apperrors.InvalidInput("at least one file is required")
	}

	images := make([]*domain.Image, len(files))
	for i := range files {
		img, err := s.newImage(&files[i])
		if err != nil {
			return nil, err
		}
		img.ProductID = productID
		images[i] = img
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			return err
		}
		for _, img := range images {
			if err := s.images.Create(ctx, img); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save images: %w", err)
	}

	dtos := make([]domain.ImageDTO, len(images))
	for i, img := range images {
		dtos[i] = img.ToDTO(s.imageBaseURL)

		if err := s.publisher.PublishImageUploaded(ctx, img); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish image.uploaded event",
				slog.Int64("image_id", img.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "images uploaded",
		slog.Int64("product_id", productID),
		slog.Int("count", len(images)),
	)

	return dtos, nil
}

// GetImage retrieves an image with its payload.
func (s *ImageService) GetImage(ctx context.Context, id int64) (*domain.Image, error) {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get image by id: %w", err)
	}
	return img, nil
}

// UpdateImage replaces the file of an existing image.
func (s *ImageService) UpdateImage(ctx context.Context, id int64, file domain.UploadedFile) (*domain.ImageDTO, error) {
	img, err := s.newImage(&file)
	if err != nil {
		return nil, err
	}
	img.ID = id

	if err := s.images.Update(ctx, img); err != nil {
		return nil, fmt.Errorf("update image: %w", err)
	}

	if err := s.publisher.PublishImageUpdated(ctx, img); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish image.updated event",
			slog.Int64("image_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "image updated",
		slog.Int64("image_id", id),
		slog.Int64("product_id", img.ProductID),
	)

	dto := img.ToDTO(s.imageBaseURL)
	return &dto, nil
}

// DeleteImage removes an image.
func (s *ImageService) DeleteImage(ctx context.Context, id int64) error {
	img, err := s.images.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get image for delete: %w", err)
	}

	if err := s.images.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if err := s.publisher.PublishImageDeleted(ctx, img); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish image.deleted event",
			slog.Int64("image_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "image deleted",
		slog.Int64("image_id", id),
		slog.Int64("product_id", img.ProductID),
	)

	return nil
}

// newImage validates an uploaded file and turns it into an Image. The stored
// content type is always the sniffed one; a specific declared type must
// agree with it.
func (s *ImageService) newImage(f *domain.UploadedFile) (*domain.Image, error) {
	size := int64(len(f.Data))
	if size == 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file %q is empty", f.FileName))
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file %q exceeds maximum allowed size of %d bytes", f.FileName, s.maxBytes))
	}

	name := path.Base(strings.ReplaceAll(strings.TrimSpace(f.FileName), `\`, "/"))
	if name == "." || name == "/" {
		return nil, apperrors.InvalidInput("file name is required")
	}

	detected := mimetype.Detect(f.Data)
	declared := strings.TrimSpace(f.ContentType)
	if declared != "" && !strings.HasPrefix(declared, "application/octet-stream") && !detected.Is(declared) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file %q is declared as %q but contains %q", name, declared, detected.String()))
	}
	contentType := detected.String()
	if !domain.IsAllowedImageType(contentType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("content type %q is not allowed", contentType))
	}

	return &domain.Image{
		FileName: name,
		FileType: contentType,
		Size:     size,
		Data:     f.Data,
	}, nil
}
