package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/pkg/database"
	apperrors "github.com/osamo/dreamshops/pkg/errors"
)

const (
	queryInsertImage = `
		INSERT INTO images (file_name, file_type, size_bytes, data, product_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	queryImageByID = `
		SELECT id, file_name, file_type, size_bytes, data, product_id, created_at, updated_at
		FROM images
		WHERE id = $1`

	queryImagesByProducts = `
		SELECT id, file_name, file_type, size_bytes, product_id, created_at, updated_at
		FROM images
		WHERE product_id = ANY($1)
		ORDER BY id`

	queryUpdateImage = `
		UPDATE images
		SET file_name = $1, file_type = $2, size_bytes = $3, data = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING product_id, created_at, updated_at`

	queryDeleteImage = `DELETE FROM images WHERE id = $1`
)

// ImageRepository implements repository.ImageRepository using PostgreSQL.
type ImageRepository struct {
	db database.DBTX
}

// NewImageRepository creates a new PostgreSQL-backed image repository.
func NewImageRepository(db database.DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

// Create inserts a new image into the database.
func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateImage", queryInsertImage)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, queryInsertImage,
		img.FileName,
		img.FileType,
		img.Size,
		img.Data,
		img.ProductID,
	).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.NotFound("product", img.ProductID)
		}
		return fmt.Errorf("insert image: %w", err)
	}

	return nil
}

// GetByID retrieves an image with its payload.
func (r *ImageRepository) GetByID(ctx context.Context, id int64) (img *domain.Image, err error) {
	ctx, end := database.TraceQuery(ctx, "GetImageByID", queryImageByID)
	defer func() { end(err) }()

	var i domain.Image
	err = database.Conn(ctx, r.db).QueryRow(ctx, queryImageByID, id).Scan(
		&i.ID,
		&i.FileName,
		&i.FileType,
		&i.Size,
		&i.Data,
		&i.ProductID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("image", id)
		}
		return nil, fmt.Errorf("scan image: %w", err)
	}

	return &i, nil
}

// ListByProductIDs returns image metadata for the given products.
func (r *ImageRepository) ListByProductIDs(ctx context.Context, productIDs []int64) (images []domain.Image, err error) {
	if len(productIDs) == 0 {
		return []domain.Image{}, nil
	}

	ctx, end := database.TraceQuery(ctx, "ListImagesByProducts", queryImagesByProducts)
	defer func() { end(err) }()

	rows, err := database.Conn(ctx, r.db).Query(ctx, queryImagesByProducts, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var i domain.Image
		if err := rows.Scan(
			&i.ID,
			&i.FileName,
			&i.FileType,
			&i.Size,
			&i.ProductID,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan image row: %w", err)
		}
		images = append(images, i)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate image rows: %w", err)
	}

	if images == nil {
		images = []domain.Image{}
	}

	return images, nil
}

// Update replaces the file stored for an existing image.
func (r *ImageRepository) Update(ctx context.Context, img *domain.Image) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateImage", queryUpdateImage)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, queryUpdateImage,
		img.FileName,
		img.FileType,
		img.Size,
		img.Data,
		img.ID,
	).Scan(&img.ProductID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("image", img.ID)
		}
		return fmt.Errorf("update image: %w", err)
	}

	return nil
}

// Delete removes an image from the database by its ID.
func (r *ImageRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteImage", queryDeleteImage)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, r.db).Exec(ctx, queryDeleteImage, id)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("image", id)
	}

	return nil
}
