package order

import (
	"context"
	"time"

	"storefront-be/internal/checkout"
	"storefront-be/internal/logger"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Recorder interface {
	Transition(status string)
	OrderCreated()
}

type Service interface {
	// FinalizeFromCheckout completes a paid checkout and creates its order in
	// one transaction. It returns checkout.ErrAlreadyFinalized or
	// checkout.ErrConcurrentUpdate when another delivery got there first, and
	// a nil order when the checkout already had one.
	FinalizeFromCheckout(ctx context.Context, c checkout.Checkout, details PaymentDetails) (*Order, error)
	MyOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)
	Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Order, error)
}

type service struct {
	repo     Repository
	recorder Recorder
	now      func() time.Time
}

func NewService(repo Repository, recorder Recorder) Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &service{repo: repo, recorder: recorder, now: time.Now}
}

type nopRecorder struct{}

func (nopRecorder) Transition(string) {}
func (nopRecorder) OrderCreated()     {}

func (s *service) FinalizeFromCheckout(ctx context.Context, c checkout.Checkout, details PaymentDetails) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "FinalizeFromCheckout"),
		zap.String("checkout_id", c.ID.String()),
	)

	paid, err := c.MarkPaid(s.now())
	if err != nil {
		return nil, err
	}

	o := Materialize(paid, details)
	o.OrderNumber = utils.GenerateOrderNumber()

	saved, created, err := s.repo.CreateFromCheckout(ctx, paid, &o)
	if err != nil {
		log.Warn("checkout finalization not applied", zap.Error(err))
		return nil, err
	}
	s.recorder.Transition(string(saved.Status))

	if !created {
		log.Info("checkout already has an order")
		return nil, nil
	}
	s.recorder.OrderCreated()

	log.Info("order created",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalPrice.StringFixed(2)),
	)
	return &o, nil
}

func (s *service) MyOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if !isAdmin && o.UserID != userID {
		return Order{}, ErrAccessDenied
	}
	return o, nil
}

func (s *service) List(ctx context.Context) ([]Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Order, error) {
	if !status.Valid() {
		return Order{}, ErrInvalidStatus
	}

	var deliveredAt *time.Time
	if status == StatusDelivered {
		now := s.now()
		deliveredAt = &now
	}

	o, err := s.repo.UpdateStatus(ctx, id, status, deliveredAt)
	if err != nil {
		return Order{}, err
	}
	logger.FromCtx(ctx).Info("order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)),
	)
	return o, nil
}
