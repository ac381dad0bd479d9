package cart

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cartCols = []string{"id", "user_id", "guest_id", "items", "total_price", "created_at", "updated_at"}

func TestRepository_GetByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	now := time.Now()

	t.Run("ByUser", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM carts WHERE user_id = \$1`).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows(cartCols).
				AddRow(cartID.String(), userID.String(), nil, `[{"productId":"`+uuid.NewString()+`","material":"m","color":"c","price":"10","quantity":2}]`, "20.00", now, now))

		c, err := repo.GetByOwner(ctx, Owner{UserID: &userID})
		require.NoError(t, err)
		assert.Equal(t, cartID, c.ID)
		require.NotNil(t, c.UserID)
		assert.Equal(t, userID, *c.UserID)
		assert.Nil(t, c.GuestID)
		require.Len(t, c.Items, 1)
		assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(20)))
	})

	t.Run("ByGuestNotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM carts WHERE guest_id = \$1`).
			WithArgs("g1").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByOwner(ctx, Owner{GuestID: "g1"})
		assert.ErrorIs(t, err, ErrCartNotFound)
	})

	t.Run("NoOwner", func(t *testing.T) {
		_, err := repo.GetByOwner(ctx, Owner{})
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})
}

func TestRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Insert", func(t *testing.T) {
		c := newCart(Owner{GuestID: "g1"})
		id := uuid.New()
		mock.ExpectQuery(`INSERT INTO carts \(user_id, guest_id, items, total_price\)`).
			WithArgs(nil, "g1", []byte("[]"), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id.String(), now, now))

		require.NoError(t, repo.Save(ctx, c))
		assert.Equal(t, id, c.ID)
	})

	t.Run("Update", func(t *testing.T) {
		c := &Cart{ID: uuid.New(), Items: Items{}}
		mock.ExpectQuery(`UPDATE carts`).
			WithArgs(c.ID, nil, nil, []byte("[]"), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		require.NoError(t, repo.Save(ctx, c))
		assert.Equal(t, now, c.UpdatedAt)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	userID := uuid.New()
	mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewRepository(db).DeleteByUser(context.Background(), userID))
}
