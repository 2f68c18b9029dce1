package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/osamo/dreamshops/internal/domain"
	"github.com/osamo/dreamshops/internal/repository"
	"github.com/osamo/dreamshops/pkg/database"
	apperrors "github.com/osamo/dreamshops/pkg/errors"
)

// productSelect reads a product joined with its category.
const productSelect = `
		SELECT p.id, p.name, p.brand, p.price, p.inventory, p.description, p.created_at, p.updated_at,
		       c.id, c.name, c.created_at, c.updated_at
		FROM products p
		JOIN categories c ON c.id = p.category_id`

const (
	queryInsertProduct = `
		INSERT INTO products (name, brand, price, inventory, description, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, price, created_at, updated_at`

	queryProductByID = productSelect + `
		WHERE p.id = $1`

	queryUpdateProduct = `
		UPDATE products
		SET name = $1, brand = $2, price = $3, inventory = $4, description = $5,
		    category_id = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING price, updated_at`

	queryDeleteProduct = `DELETE FROM products WHERE id = $1`
)

// errOutOfRange is returned when price or inventory exceeds its column.
var errOutOfRange = apperrors.InvalidInput("price or inventory is out of range")

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product into the database.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProduct", queryInsertProduct)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, queryInsertProduct,
		p.Name,
		p.Brand,
		p.Price,
		p.Inventory,
		p.Description,
		p.Category.ID,
	).Scan(&p.ID, &p.Price, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("category", p.Category.ID)
		case database.IsNumericOutOfRange(err):
			return errOutOfRange
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product and its category by the product ID.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (p *domain.Product, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProductByID", queryProductByID)
	defer func() { end(err) }()

	var product domain.Product
	err = scanProduct(database.Conn(ctx, r.db).QueryRow(ctx, queryProductByID, id), &product)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &product, nil
}

// List returns products matching the given filter ordered by id.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (products []domain.Product, err error) {
	where, args := buildProductWhere(filter)
	query := productSelect + where + `
		ORDER BY p.id`

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

// Count returns the number of products matching the given filter.
func (r *ProductRepository) Count(ctx context.Context, filter repository.ProductFilter) (n int64, err error) {
	where, args := buildProductWhere(filter)
	query := `
		SELECT count(*)
		FROM products p
		JOIN categories c ON c.id = p.category_id` + where

	ctx, end := database.TraceQuery(ctx, "CountProducts", query)
	defer func() { end(err) }()

	if err = database.Conn(ctx, r.db).QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Update modifies an existing product in the database.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpdateProduct", queryUpdateProduct)
	defer func() { end(err) }()

	err = database.Conn(ctx, r.db).QueryRow(ctx, queryUpdateProduct,
		p.Name,
		p.Brand,
		p.Price,
		p.Inventory,
		p.Description,
		p.Category.ID,
		p.ID,
	).Scan(&p.Price, &p.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.NotFound("product", p.ID)
		case database.IsForeignKeyViolation(err):
			return apperrors.NotFound("category", p.Category.ID)
		case database.IsNumericOutOfRange(err):
			return errOutOfRange
		}
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

// Delete removes a product from the database by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteProduct", queryDeleteProduct)
	defer func() { end(err) }()

	ct, err := database.Conn(ctx, r.db).Exec(ctx, queryDeleteProduct, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// buildProductWhere turns the filter into a WHERE clause and its arguments.
func buildProductWhere(filter repository.ProductFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("p.name", filter.Name)
	add("p.brand", filter.Brand)
	add("c.name", filter.CategoryName)

	if len(conditions) == 0 {
		return "", nil
	}
	return `
		WHERE ` + strings.Join(conditions, " AND "), args
}

// scanProduct scans a product joined with its category from row.
func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Brand,
		&p.Price,
		&p.Inventory,
		&p.Description,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Category.ID,
		&p.Category.Name,
		&p.Category.CreatedAt,
		&p.Category.UpdatedAt,
	)
}
