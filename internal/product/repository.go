package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Similar(ctx context.Context, p Product, limit int) ([]Product, error)
	BestSellers(ctx context.Context, limit int) ([]Product, error)
	NewArrivals(ctx context.Context, limit int) ([]Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, name, description, price, category, images, tags, user_id,
	dimensions, weight, is_published, sales_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category,
		pq.Array(&p.Images), pq.Array(&p.Tags), &p.UserID,
		&p.Dimensions, &p.Weight, &p.IsPublished, &p.SalesCount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *repository) query(ctx context.Context, q string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *repository) List(ctx context.Context, f ListFilter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeHidden {
		where = append(where, "is_published = TRUE")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	q := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"

	return r.query(ctx, q, args...)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, p Product) (Product, error) {
	created, err := scanProduct(r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, category, images, tags, user_id, dimensions, weight, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.Category, pq.Array(p.Images), pq.Array(p.Tags),
		p.UserID, p.Dimensions, p.Weight, p.IsPublished,
	))
	if err != nil {
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	updated, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, category = $5, images = $6, tags = $7,
			dimensions = $8, weight = $9, is_published = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, p.Description, p.Price, p.Category, pq.Array(p.Images), pq.Array(p.Tags),
		p.Dimensions, p.Weight, p.IsPublished,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrProductNotFound
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) Similar(ctx context.Context, p Product, limit int) ([]Product, error) {
	return r.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE category = $1 AND id <> $2 AND is_published = TRUE ORDER BY created_at DESC LIMIT $3",
		p.Category, p.ID, limit)
}

func (r *repository) BestSellers(ctx context.Context, limit int) ([]Product, error) {
	return r.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_published = TRUE ORDER BY sales_count DESC LIMIT $1",
		limit)
}

func (r *repository) NewArrivals(ctx context.Context, limit int) ([]Product, error) {
	return r.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE is_published = TRUE ORDER BY created_at DESC LIMIT $1",
		limit)
}
