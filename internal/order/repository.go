package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/checkout"

	"github.com/google/uuid"
)

// CheckoutWriter persists a checkout transition inside an open transaction.
type CheckoutWriter interface {
	UpdateStateTx(ctx context.Context, tx *sql.Tx, c checkout.Checkout) (checkout.Checkout, error)
}

type Repository interface {
	// CreateFromCheckout stores the paid checkout and its order atomically.
	// created is false when the checkout already had an order.
	CreateFromCheckout(ctx context.Context, paid checkout.Checkout, o *Order) (saved checkout.Checkout, created bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveredAt *time.Time) (Order, error)
}

type repository struct {
	db        *sql.DB
	checkouts CheckoutWriter
}

func NewRepository(db *sql.DB, checkouts CheckoutWriter) Repository {
	return &repository{db: db, checkouts: checkouts}
}

const orderColumns = `id, order_number, user_id, checkout_id, items, total_price, shipping_address,
	status, payment_details, delivered_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CheckoutID, &o.Items, &o.TotalPrice,
		&o.ShippingAddress, &o.Status, &o.PaymentDetails, &o.DeliveredAt,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func (r *repository) CreateFromCheckout(ctx context.Context, paid checkout.Checkout, o *Order) (checkout.Checkout, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return paid, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	saved, err := r.checkouts.UpdateStateTx(ctx, tx, paid)
	if err != nil {
		return paid, false, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (order_number, user_id, checkout_id, items, total_price,
			shipping_address, status, payment_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (checkout_id) DO NOTHING
		RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.UserID, o.CheckoutID, o.Items, o.TotalPrice,
		o.ShippingAddress, o.Status, o.PaymentDetails,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)

	created := true
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = false
	case err != nil:
		return paid, false, fmt.Errorf("insert order: %w", err)
	}

	if created {
		for _, item := range o.Items {
			if _, err := tx.ExecContext(ctx,
				`UPDATE products SET sales_count = sales_count + $1 WHERE id = $2`,
				item.Quantity, item.ProductID,
			); err != nil {
				return paid, false, fmt.Errorf("bump sales count: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return paid, false, fmt.Errorf("commit: %w", err)
	}
	return saved, created, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, "SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC")
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveredAt *time.Time) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $2, delivered_at = COALESCE($3::timestamptz, delivered_at), updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns,
		id, status, deliveredAt))
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	return o, nil
}
