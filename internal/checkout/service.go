package checkout

import (
	"context"
	"strings"
	"time"

	"storefront-be/internal/apperror"
	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartStore interface {
	Get(ctx context.Context, owner cart.Owner) (*cart.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type ProductLookup interface {
	GetPublished(ctx context.Context, id uuid.UUID) (product.Product, error)
}

// TransitionRecorder counts checkout state changes.
type TransitionRecorder interface {
	Transition(status string)
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Checkout, error)
	List(ctx context.Context, userID uuid.UUID) ([]Checkout, error)
	// Get returns the checkout only when userID owns it.
	Get(ctx context.Context, id, userID uuid.UUID) (Checkout, error)
	GetByID(ctx context.Context, id uuid.UUID) (Checkout, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (Checkout, error)
	StartPayment(ctx context.Context, c Checkout, session PaymentSession) (Checkout, error)
	MarkPaymentFailed(ctx context.Context, c Checkout) (Checkout, error)
}

type service struct {
	repo       Repository
	carts      CartStore
	products   ProductLookup
	cartPolicy string
	recorder   TransitionRecorder
	now        func() time.Time
}

func NewService(repo Repository, carts CartStore, products ProductLookup, cartPolicy string, recorder TransitionRecorder) Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &service{
		repo:       repo,
		carts:      carts,
		products:   products,
		cartPolicy: cartPolicy,
		recorder:   recorder,
		now:        time.Now,
	}
}

type nopRecorder struct{}

func (nopRecorder) Transition(string) {}

func validateAddress(a ShippingAddress) error {
	var details []apperror.Detail
	for field, v := range map[string]string{
		"shippingAddress.address":    a.Address,
		"shippingAddress.city":       a.City,
		"shippingAddress.country":    a.Country,
		"shippingAddress.postalCode": a.PostalCode,
	} {
		if strings.TrimSpace(v) == "" {
			details = append(details, apperror.Detail{Field: field, Message: field + " is required"})
		}
	}
	if !utils.IsValidPhone(a.Phone) {
		details = append(details, apperror.Detail{Field: "shippingAddress.phone", Message: "please provide a valid Egyptian phone number"})
	}
	if len(details) > 0 {
		return apperror.Validation("invalid shipping address", details...)
	}
	return nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (Checkout, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("user_id", userID.String()),
	)

	if err := validateAddress(in.ShippingAddress); err != nil {
		return Checkout{}, err
	}

	c, err := s.carts.Get(ctx, cart.Owner{UserID: &userID})
	if err != nil {
		return Checkout{}, err
	}
	if len(c.Items) == 0 {
		return Checkout{}, ErrCartEmpty
	}

	// Prices are re-read so the checkout reflects the catalogue at creation.
	items := make(LineItems, 0, len(c.Items))
	for _, it := range c.Items {
		p, err := s.products.GetPublished(ctx, it.ProductID)
		if err != nil {
			log.Warn("cart references unavailable product",
				zap.String("product_id", it.ProductID.String()), zap.Error(err))
			return Checkout{}, err
		}
		items = append(items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Material:  it.Material,
			Color:     it.Color,
			Price:     p.Price,
			Quantity:  it.Quantity,
		})
	}

	addr := in.ShippingAddress
	addr.Phone = utils.NormalizePhone(addr.Phone)

	co := Checkout{
		UserID:          userID,
		Items:           items,
		TotalPrice:      items.Total(),
		ShippingAddress: addr,
		Status:          StatusAwaitingPayment,
		PaymentStatus:   PaymentPending,
	}
	if err := s.repo.Create(ctx, &co); err != nil {
		log.Error("failed to create checkout", zap.Error(err))
		return Checkout{}, err
	}
	s.recorder.Transition(string(co.Status))

	if s.cartPolicy != config.CartPolicyOnPayment {
		if err := s.carts.Clear(ctx, userID); err != nil {
			log.Warn("failed to clear cart after checkout", zap.Error(err))
		}
	}

	log.Info("checkout created",
		zap.String("checkout_id", co.ID.String()),
		zap.String("total", co.TotalPrice.StringFixed(2)),
	)
	return co, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Checkout, error) {
	return s.repo.ListOpenByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (Checkout, error) {
	return s.repo.GetForUser(ctx, id, userID)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (Checkout, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Cancel(ctx context.Context, id, userID uuid.UUID) (Checkout, error) {
	c, err := s.repo.GetForUser(ctx, id, userID)
	if err != nil {
		return Checkout{}, err
	}
	next, err := c.Cancel(s.now())
	if err != nil {
		return Checkout{}, err
	}
	return s.save(ctx, next)
}

func (s *service) StartPayment(ctx context.Context, c Checkout, session PaymentSession) (Checkout, error) {
	next, err := c.StartPayment(session)
	if err != nil {
		return Checkout{}, err
	}
	return s.save(ctx, next)
}

func (s *service) MarkPaymentFailed(ctx context.Context, c Checkout) (Checkout, error) {
	next, err := c.MarkFailed()
	if err != nil {
		return Checkout{}, err
	}
	return s.save(ctx, next)
}

func (s *service) save(ctx context.Context, c Checkout) (Checkout, error) {
	saved, err := s.repo.UpdateState(ctx, c)
	if err != nil {
		return Checkout{}, err
	}
	s.recorder.Transition(string(saved.Status))
	logger.FromCtx(ctx).Info("checkout state changed",
		zap.String("checkout_id", saved.ID.String()),
		zap.String("status", string(saved.Status)),
		zap.String("payment_status", string(saved.PaymentStatus)),
		zap.Int("version", saved.Version),
	)
	return saved, nil
}
