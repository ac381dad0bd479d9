package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repository interface {
	Create(ctx context.Context, c *Checkout) error
	GetByID(ctx context.Context, id uuid.UUID) (Checkout, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (Checkout, error)
	ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]Checkout, error)
	// UpdateState persists c's state if the stored row still has c.Version
	// and is not finalized. It returns c with the bumped version.
	UpdateState(ctx context.Context, c Checkout) (Checkout, error)
	// UpdateStateTx is UpdateState inside a caller-owned transaction.
	UpdateStateTx(ctx context.Context, tx *sql.Tx, c Checkout) (Checkout, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const checkoutColumns = `id, user_id, items, total_price, shipping_address, status, payment_status,
	finalized, finalized_at, payment_session, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckout(row rowScanner) (Checkout, error) {
	var c Checkout
	err := row.Scan(
		&c.ID, &c.UserID, &c.Items, &c.TotalPrice, &c.ShippingAddress,
		&c.Status, &c.PaymentStatus, &c.Finalized, &c.FinalizedAt,
		&c.PaymentSession, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *repository) Create(ctx context.Context, c *Checkout) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO checkouts (user_id, items, total_price, shipping_address, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at`,
		c.UserID, c.Items, c.TotalPrice, c.ShippingAddress, c.Status, c.PaymentStatus,
	).Scan(&c.ID, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert checkout: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (Checkout, error) {
	c, err := scanCheckout(r.db.QueryRowContext(ctx,
		"SELECT "+checkoutColumns+" FROM checkouts WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return Checkout{}, ErrCheckoutNotFound
	}
	if err != nil {
		return Checkout{}, fmt.Errorf("get checkout: %w", err)
	}
	return c, nil
}

func (r *repository) GetForUser(ctx context.Context, id, userID uuid.UUID) (Checkout, error) {
	c, err := scanCheckout(r.db.QueryRowContext(ctx,
		"SELECT "+checkoutColumns+" FROM checkouts WHERE id = $1 AND user_id = $2", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Checkout{}, ErrCheckoutNotFound
	}
	if err != nil {
		return Checkout{}, fmt.Errorf("get checkout: %w", err)
	}
	return c, nil
}

func (r *repository) ListOpenByUser(ctx context.Context, userID uuid.UUID) ([]Checkout, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+checkoutColumns+` FROM checkouts
		WHERE user_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC`,
		userID, StatusAwaitingPayment, StatusPendingPayment)
	if err != nil {
		return nil, fmt.Errorf("list checkouts: %w", err)
	}
	defer rows.Close()

	checkouts := []Checkout{}
	for rows.Next() {
		c, err := scanCheckout(rows)
		if err != nil {
			return nil, err
		}
		checkouts = append(checkouts, c)
	}
	return checkouts, rows.Err()
}

func (r *repository) UpdateState(ctx context.Context, c Checkout) (Checkout, error) {
	return updateState(ctx, r.db, c)
}

func (r *repository) UpdateStateTx(ctx context.Context, tx *sql.Tx, c Checkout) (Checkout, error) {
	return updateState(ctx, tx, c)
}

func updateState(ctx context.Context, q Querier, c Checkout) (Checkout, error) {
	err := q.QueryRowContext(ctx, `
		UPDATE checkouts
		SET status = $3, payment_status = $4, finalized = $5, finalized_at = $6,
			payment_session = $7, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2 AND finalized = FALSE
		RETURNING version, updated_at`,
		c.ID, c.Version, c.Status, c.PaymentStatus, c.Finalized, c.FinalizedAt, c.PaymentSession,
	).Scan(&c.Version, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrConcurrentUpdate
	}
	if err != nil {
		return c, fmt.Errorf("update checkout state: %w", err)
	}
	return c, nil
}
