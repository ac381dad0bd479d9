package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Repository interface {
	GetByOwner(ctx context.Context, owner Owner) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const cartColumns = "id, user_id, guest_id, items, total_price, created_at, updated_at"

func (r *repository) GetByOwner(ctx context.Context, owner Owner) (*Cart, error) {
	var row *sql.Row
	switch {
	case owner.UserID != nil:
		row = r.db.QueryRowContext(ctx, "SELECT "+cartColumns+" FROM carts WHERE user_id = $1", *owner.UserID)
	case owner.GuestID != "":
		row = r.db.QueryRowContext(ctx, "SELECT "+cartColumns+" FROM carts WHERE guest_id = $1", owner.GuestID)
	default:
		return nil, ErrOwnerRequired
	}

	var c Cart
	err := row.Scan(&c.ID, &c.UserID, &c.GuestID, &c.Items, &c.TotalPrice, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return &c, nil
}

// Save inserts a new cart or overwrites an existing one.
func (r *repository) Save(ctx context.Context, c *Cart) error {
	if c.ID == uuid.Nil {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO carts (user_id, guest_id, items, total_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`,
			c.UserID, c.GuestID, c.Items, c.TotalPrice,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert cart: %w", err)
		}
		return nil
	}

	err := r.db.QueryRowContext(ctx, `
		UPDATE carts
		SET user_id = $2, guest_id = $3, items = $4, total_price = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.UserID, c.GuestID, c.Items, c.TotalPrice,
	).Scan(&c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartNotFound
	}
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM carts WHERE id = $1", id)
	return err
}

func (r *repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM carts WHERE user_id = $1", userID)
	return err
}
