package cart

import (
	"context"
	"testing"

	"storefront-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByOwner(ctx context.Context, owner Owner) (*Cart, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, c *Cart) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type MockProducts struct {
	mock.Mock
}

func (m *MockProducts) GetPublished(ctx context.Context, id uuid.UUID) (product.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(product.Product), args.Error(1)
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("NoOwner", func(t *testing.T) {
		_, err := NewService(new(MockRepository), new(MockProducts)).Get(ctx, Owner{})
		assert.ErrorIs(t, err, ErrOwnerRequired)
	})

	t.Run("MissingCartIsEmpty", func(t *testing.T) {
		repo := new(MockRepository)
		owner := Owner{GuestID: "g1"}
		repo.On("GetByOwner", ctx, owner).Return(nil, ErrCartNotFound)

		c, err := NewService(repo, new(MockProducts)).Get(ctx, owner)
		require.NoError(t, err)
		assert.Empty(t, c.Items)
	})
}

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	owner := Owner{UserID: &userID}
	p := product.Product{ID: uuid.New(), Name: "Chair", Price: decimal.NewFromInt(10), IsPublished: true}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		products := new(MockProducts)
		products.On("GetPublished", ctx, p.ID).Return(p, nil)
		repo.On("GetByOwner", ctx, owner).Return(nil, ErrCartNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*cart.Cart")).Return(nil)

		c, err := NewService(repo, products).AddItem(ctx, owner, AddItemInput{ProductID: p.ID, Material: "oak", Color: "red", Quantity: 2})
		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.Equal(t, "Chair", c.Items[0].Name)
		assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, &userID, c.UserID)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		_, err := NewService(new(MockRepository), new(MockProducts)).AddItem(ctx, owner, AddItemInput{ProductID: p.ID, Material: "oak", Color: "red"})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("MissingColor", func(t *testing.T) {
		_, err := NewService(new(MockRepository), new(MockProducts)).AddItem(ctx, owner, AddItemInput{ProductID: p.ID, Material: "oak", Quantity: 1})
		assert.Error(t, err)
	})

	t.Run("UnknownProduct", func(t *testing.T) {
		products := new(MockProducts)
		products.On("GetPublished", ctx, p.ID).Return(product.Product{}, product.ErrProductNotFound)

		_, err := NewService(new(MockRepository), products).AddItem(ctx, owner, AddItemInput{ProductID: p.ID, Material: "oak", Color: "red", Quantity: 1})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})
}

func TestService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	owner := Owner{GuestID: "g1"}
	pid := uuid.New()
	qty := func(n int) *int { return &n }

	existing := func() *Cart {
		c := newCart(owner)
		c.Add(Item{ProductID: pid, Material: "oak", Color: "red", Price: decimal.NewFromInt(10), Quantity: 3})
		return c
	}

	t.Run("ZeroRemoves", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByOwner", ctx, owner).Return(existing(), nil)
		repo.On("Save", ctx, mock.Anything).Return(nil)

		c, err := NewService(repo, new(MockProducts)).RemoveItem(ctx, owner, pid, "oak", "red")
		require.NoError(t, err)
		assert.Empty(t, c.Items)
	})

	t.Run("UnknownLine", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByOwner", ctx, owner).Return(existing(), nil)

		_, err := NewService(repo, new(MockProducts)).UpdateItem(ctx, owner, UpdateItemInput{ProductID: pid, Material: "pine", Color: "red", Quantity: qty(1)})
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})

	t.Run("Negative", func(t *testing.T) {
		_, err := NewService(new(MockRepository), new(MockProducts)).UpdateItem(ctx, owner, UpdateItemInput{ProductID: pid, Quantity: qty(-1)})
		assert.ErrorIs(t, err, ErrNegativeQuantity)
	})
}

func TestService_Merge(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	pid := uuid.New()

	t.Run("MissingGuest", func(t *testing.T) {
		_, err := NewService(new(MockRepository), new(MockProducts)).Merge(ctx, userID, "")
		assert.ErrorIs(t, err, ErrMergeOwnerRequired)
	})

	t.Run("AdoptGuestCart", func(t *testing.T) {
		repo := new(MockRepository)
		guest := newCart(Owner{GuestID: "g1"})
		guest.ID = uuid.New()
		repo.On("GetByOwner", ctx, Owner{UserID: &userID}).Return(nil, ErrCartNotFound)
		repo.On("GetByOwner", ctx, Owner{GuestID: "g1"}).Return(guest, nil)
		repo.On("Save", ctx, guest).Return(nil)

		c, err := NewService(repo, new(MockProducts)).Merge(ctx, userID, "g1")
		require.NoError(t, err)
		assert.Equal(t, &userID, c.UserID)
		assert.Nil(t, c.GuestID)
	})

	t.Run("MergeBoth", func(t *testing.T) {
		repo := new(MockRepository)
		user := newCart(Owner{UserID: &userID})
		user.ID = uuid.New()
		user.Add(Item{ProductID: pid, Material: "m", Color: "c", Price: decimal.NewFromInt(10), Quantity: 1})
		guest := newCart(Owner{GuestID: "g1"})
		guest.ID = uuid.New()
		guest.Add(Item{ProductID: pid, Material: "m", Color: "c", Price: decimal.NewFromInt(10), Quantity: 2})

		repo.On("GetByOwner", ctx, Owner{UserID: &userID}).Return(user, nil)
		repo.On("GetByOwner", ctx, Owner{GuestID: "g1"}).Return(guest, nil)
		repo.On("Save", ctx, user).Return(nil)
		repo.On("Delete", ctx, guest.ID).Return(nil)

		c, err := NewService(repo, new(MockProducts)).Merge(ctx, userID, "g1")
		require.NoError(t, err)
		assert.Equal(t, 3, c.Items[0].Quantity)
		assert.True(t, c.TotalPrice.Equal(decimal.NewFromInt(30)))
		repo.AssertExpectations(t)
	})
}
