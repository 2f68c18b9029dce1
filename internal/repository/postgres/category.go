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

// categoryColumns is the standard SELECT column list for categories.
const categoryColumns = `id, name, created_at, updated_at`

const (
	queryInsertCategory = `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at`

	// The no-op update makes RETURNING yield the existing row on conflict,
	// so concurrent callers with the same name resolve to one category.
	queryFindOrCreateCategory = `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + categoryColumns

	queryCategoryByID   = `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	queryCategoryByName = `SELECT ` + categoryColumns + ` FROM categories WHERE name = $1`
	queryListCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY name, id`

	queryUpdateCategory = `
		UPDATE categories
		SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at`

	queryDeleteCategory = `DELETE FROM categories WHERE id = $1`
)

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db database.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category into the database.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateCategory", queryInsertCategory)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, queryInsertCategory, c.Name).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by its unique identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (c *domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, "GetCategoryByID", queryCategoryByID)
	defer func() { end(err) }()

	c, err = r.scanCategory(ctx, queryCategoryByID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("category", id)
	}
	return c, err
}

// GetByName retrieves a category by its exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (c *domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, "GetCategoryByName", queryCategoryByName)
	defer func() { end(err) }()

	c, err = r.scanCategory(ctx, queryCategoryByName, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFoundBy("category", "name", name)
	}
	return c, err
}

// FindOrCreate returns the category with the given name, inserting it first
// when it does not exist.
func (r *CategoryRepository) FindOrCreate(ctx context.Context, name string) (c *domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, "FindOrCreateCategory", queryFindOrCreateCategory)
	defer func() { end(err) }()

	c, err = r.scanCategory(ctx, queryFindOrCreateCategory, name)
	if err != nil {
		return nil, fmt.Errorf("find or create category %q: %w", name, err)
	}
	return c, nil
}

// ListAll returns all categories ordered by name.
func (r *CategoryRepository) ListAll(ctx context.Context) (categories []domain.Category, err error) {
	ctx, end := database.TraceQuery(ctx, "ListCategories", queryListCategories)
	defer func() { end(err) }()

	rows, err := database.Conn(ctx, r.db).Query(ctx, queryListCategories)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	if categories == nil {
		categories = []domain.Category{}
	}

	return categories, nil
}

// Update renames an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateCategory", queryUpdateCategory)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, queryUpdateCategory, c.Name, c.ID).Scan(&c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NotFound("category", c.ID)
		case database.IsUniqueViolation(err):
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category from the database by its ID.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteCategory", queryDeleteCategory)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, r.db).Exec(ctx, queryDeleteCategory, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Conflict(fmt.Sprintf("category with id %d still has products", id))
		}
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}

// scanCategory executes a query expected to return a single category row.
// pgx.ErrNoRows is returned unwrapped so callers can name the lookup.
func (r *CategoryRepository) scanCategory(ctx context.Context, query string, args ...any) (*domain.Category, error) {
	var c domain.Category

	err := database.Conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.Name,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}
