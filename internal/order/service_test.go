package order

import (
	"context"
	"testing"
	"time"

	"storefront-be/internal/checkout"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateFromCheckout(ctx context.Context, paid checkout.Checkout, o *Order) (checkout.Checkout, bool, error) {
	args := m.Called(ctx, paid, o)
	return args.Get(0).(checkout.Checkout), args.Bool(1), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Order), args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) ListAll(ctx context.Context) ([]Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveredAt *time.Time) (Order, error) {
	args := m.Called(ctx, id, status, deliveredAt)
	return args.Get(0).(Order), args.Error(1)
}

type fakeRecorder struct {
	transitions []string
	orders      int
}

func (r *fakeRecorder) Transition(status string) { r.transitions = append(r.transitions, status) }
func (r *fakeRecorder) OrderCreated()            { r.orders++ }

func pendingCheckout() checkout.Checkout {
	return checkout.Checkout{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: checkout.LineItems{
			{ProductID: uuid.New(), Name: "A", Price: decimal.NewFromInt(10), Quantity: 2},
			{ProductID: uuid.New(), Name: "B", Price: decimal.NewFromInt(5), Quantity: 1},
		},
		TotalPrice:     decimal.NewFromInt(25),
		Status:         checkout.StatusPendingPayment,
		PaymentStatus:  checkout.PaymentPending,
		PaymentSession: &checkout.PaymentSession{InvoiceID: "1001"},
		Version:        2,
	}
}

func TestService_FinalizeFromCheckout(t *testing.T) {
	ctx := context.Background()
	details := PaymentDetails{Method: "Card", InvoiceID: "1001", ReferenceNumber: "REF"}

	t.Run("CreatesOrder", func(t *testing.T) {
		repo := new(MockRepository)
		rec := &fakeRecorder{}
		c := pendingCheckout()

		repo.On("CreateFromCheckout", ctx,
			mock.MatchedBy(func(p checkout.Checkout) bool {
				return p.Status == checkout.StatusCompleted && p.PaymentStatus == checkout.PaymentPaid && p.Finalized && p.Version == 2
			}),
			mock.MatchedBy(func(o *Order) bool {
				return o.CheckoutID == c.ID && o.Status == StatusProcessing && o.OrderNumber != ""
			}),
		).Return(checkout.Checkout{ID: c.ID, Status: checkout.StatusCompleted, Version: 3}, true, nil)

		o, err := NewService(repo, rec).FinalizeFromCheckout(ctx, c, details)
		require.NoError(t, err)
		require.NotNil(t, o)
		assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(25)))
		assert.Equal(t, details, o.PaymentDetails)
		assert.Equal(t, []string{"completed"}, rec.transitions)
		assert.Equal(t, 1, rec.orders)
		assert.Equal(t, checkout.StatusPendingPayment, c.Status, "input checkout untouched")
	})

	t.Run("AlreadyFinalized", func(t *testing.T) {
		repo := new(MockRepository)
		c := pendingCheckout()
		c.Status = checkout.StatusCanceled
		c.Finalized = true

		_, err := NewService(repo, nil).FinalizeFromCheckout(ctx, c, details)
		assert.ErrorIs(t, err, checkout.ErrAlreadyFinalized)
		repo.AssertNotCalled(t, "CreateFromCheckout", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRace", func(t *testing.T) {
		repo := new(MockRepository)
		rec := &fakeRecorder{}
		repo.On("CreateFromCheckout", ctx, mock.Anything, mock.Anything).
			Return(checkout.Checkout{}, false, checkout.ErrConcurrentUpdate)

		o, err := NewService(repo, rec).FinalizeFromCheckout(ctx, pendingCheckout(), details)
		assert.ErrorIs(t, err, checkout.ErrConcurrentUpdate)
		assert.Nil(t, o)
		assert.Zero(t, rec.orders)
	})

	t.Run("OrderExisted", func(t *testing.T) {
		repo := new(MockRepository)
		rec := &fakeRecorder{}
		repo.On("CreateFromCheckout", ctx, mock.Anything, mock.Anything).
			Return(checkout.Checkout{Status: checkout.StatusCompleted}, false, nil)

		o, err := NewService(repo, rec).FinalizeFromCheckout(ctx, pendingCheckout(), details)
		require.NoError(t, err)
		assert.Nil(t, o)
		assert.Zero(t, rec.orders)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	o := Order{ID: uuid.New(), UserID: owner}

	repo := new(MockRepository)
	repo.On("GetByID", ctx, o.ID).Return(o, nil)
	svc := NewService(repo, nil)

	got, err := svc.Get(ctx, o.ID, owner, false)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.Get(ctx, o.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.Get(ctx, o.ID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Delivered", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateStatus", ctx, id, StatusDelivered, mock.MatchedBy(func(at *time.Time) bool { return at != nil })).
			Return(Order{ID: id, Status: StatusDelivered}, nil)

		o, err := NewService(repo, nil).UpdateStatus(ctx, id, StatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, StatusDelivered, o.Status)
	})

	t.Run("Shipped", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("UpdateStatus", ctx, id, StatusShipped, (*time.Time)(nil)).
			Return(Order{ID: id, Status: StatusShipped}, nil)

		_, err := NewService(repo, nil).UpdateStatus(ctx, id, StatusShipped)
		require.NoError(t, err)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := NewService(new(MockRepository), nil).UpdateStatus(ctx, id, "lost")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}
