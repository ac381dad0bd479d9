package payment

import (
	"context"
	"encoding/json"
	"strings"

	"storefront-be/internal/apperror"
	"storefront-be/internal/checkout"
	"storefront-be/internal/config"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/order"
	"storefront-be/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CheckoutService interface {
	GetByID(ctx context.Context, id uuid.UUID) (checkout.Checkout, error)
	StartPayment(ctx context.Context, c checkout.Checkout, session checkout.PaymentSession) (checkout.Checkout, error)
	MarkPaymentFailed(ctx context.Context, c checkout.Checkout) (checkout.Checkout, error)
}

type OrderFinalizer interface {
	FinalizeFromCheckout(ctx context.Context, c checkout.Checkout, details order.PaymentDetails) (*order.Order, error)
}

type UserFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type CartClearer interface {
	Clear(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	PaymentMethods(ctx context.Context) ([]Method, error)
	InitiatePayment(ctx context.Context, userID uuid.UUID, in InitiateInput) (*InitiateResult, error)
	// MarkAsPaid and MarkAsFailed apply a verified notification. The returned
	// outcome is one of the metrics.Outcome values.
	MarkAsPaid(ctx context.Context, ev PaidEvent) (string, error)
	MarkAsFailed(ctx context.Context, ev FailedEvent) (string, error)
}

type service struct {
	gateway   Gateway
	checkouts CheckoutService
	orders    OrderFinalizer
	users     UserFinder
	carts     CartClearer
	cfg       config.Fawaterak
	policy    string
}

func NewService(
	gateway Gateway,
	checkouts CheckoutService,
	orders OrderFinalizer,
	users UserFinder,
	carts CartClearer,
	cfg config.Fawaterak,
	cartPolicy string,
) Service {
	return &service{
		gateway:   gateway,
		checkouts: checkouts,
		orders:    orders,
		users:     users,
		carts:     carts,
		cfg:       cfg,
		policy:    cartPolicy,
	}
}

func (s *service) PaymentMethods(ctx context.Context) ([]Method, error) {
	methods, err := s.gateway.PaymentMethods(ctx)
	if err != nil {
		return nil, apperror.Upstream("could not fetch payment methods", err)
	}
	return methods, nil
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (s *service) invoiceRequest(c checkout.Checkout, u user.User, methodID int) InvoiceRequest {
	first, last := splitName(u.Name)
	items := make([]CartItem, 0, len(c.Items))
	for _, li := range c.Items {
		items = append(items, CartItem{
			Name:     li.Name,
			Price:    json.Number(li.Price.StringFixed(2)),
			Quantity: li.Quantity,
		})
	}

	return InvoiceRequest{
		PaymentMethodID: methodID,
		CartTotal:       json.Number(c.TotalPrice.StringFixed(2)),
		Currency:        s.cfg.Currency,
		Customer: Customer{
			FirstName: first,
			LastName:  last,
			Email:     u.Email,
			Phone:     c.ShippingAddress.Phone,
			Address:   c.ShippingAddress.Address + ", " + c.ShippingAddress.City,
		},
		RedirectionURLs: RedirectionURLs{
			SuccessURL: s.cfg.SuccessURL,
			FailURL:    s.cfg.FailURL,
			PendingURL: s.cfg.PendingURL,
		},
		CartItems: items,
		PayLoad:   InvoicePayload{CheckoutID: c.ID},
	}
}

func (s *service) InitiatePayment(ctx context.Context, userID uuid.UUID, in InitiateInput) (*InitiateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "InitiatePayment"),
		zap.String("checkout_id", in.CheckoutID.String()),
	)

	if in.CheckoutID == uuid.Nil {
		return nil, ErrCheckoutRequired
	}
	if in.PaymentMethodID <= 0 {
		return nil, ErrPaymentMethodMissing
	}

	c, err := s.checkouts.GetByID(ctx, in.CheckoutID)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		log.Warn("payment attempted on another user's checkout", zap.String("user_id", userID.String()))
		return nil, ErrCheckoutAccessDenied
	}
	if c.Finalized {
		return nil, checkout.ErrAlreadyFinalized
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Nothing is persisted unless the provider accepts the invoice.
	inv, err := s.gateway.InitPay(ctx, s.invoiceRequest(c, u, in.PaymentMethodID))
	if err != nil {
		return nil, apperror.Upstream("could not execute payment", err)
	}

	updated, err := s.checkouts.StartPayment(ctx, c, checkout.PaymentSession{
		InvoiceID:   inv.InvoiceID.String(),
		InvoiceKey:  inv.InvoiceKey,
		PaymentData: inv.PaymentData,
	})
	if err != nil {
		log.Error("failed to record payment session", zap.String("invoice_id", inv.InvoiceID.String()), zap.Error(err))
		return nil, err
	}

	return &InitiateResult{
		Checkout:    updated,
		InvoiceID:   inv.InvoiceID.String(),
		InvoiceKey:  inv.InvoiceKey,
		PaymentData: inv.PaymentData,
	}, nil
}

// lookup returns the checkout a notification refers to, or an outcome when
// there is nothing to do.
func (s *service) lookup(ctx context.Context, id uuid.UUID) (checkout.Checkout, string, error) {
	log := logger.FromCtx(ctx).With(zap.String("checkout_id", id.String()))

	c, err := s.checkouts.GetByID(ctx, id)
	if apperror.IsNotFound(err) {
		log.Warn("webhook received for non-existent checkout")
		return c, metrics.OutcomeIgnored, nil
	}
	if err != nil {
		return c, metrics.OutcomeError, err
	}
	if c.Finalized {
		log.Info("webhook for already finalized checkout")
		return c, metrics.OutcomeIgnored, nil
	}
	return c, "", nil
}

func (s *service) MarkAsPaid(ctx context.Context, ev PaidEvent) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkAsPaid"),
		zap.String("checkout_id", ev.CheckoutID.String()),
		zap.String("invoice_id", ev.InvoiceID),
	)

	c, outcome, err := s.lookup(ctx, ev.CheckoutID)
	if outcome != "" {
		return outcome, err
	}

	// pay_load is outside the signature; the signed invoice id must be the
	// one this checkout was issued.
	if c.PaymentSession == nil || c.PaymentSession.InvoiceID != ev.InvoiceID {
		log.Warn("paid notification for an invoice not issued to this checkout")
		return metrics.OutcomeIgnored, nil
	}

	if ev.InvoiceStatus != "paid" {
		log.Info("paid notification without paid invoice status", zap.String("invoice_status", ev.InvoiceStatus))
		return metrics.OutcomeIgnored, nil
	}

	o, err := s.orders.FinalizeFromCheckout(ctx, c, order.PaymentDetails{
		Method:          ev.Method,
		InvoiceID:       ev.InvoiceID,
		ReferenceNumber: ev.ReferenceNumber,
	})
	if apperror.IsConflict(err) {
		log.Info("checkout finalized by a concurrent delivery", zap.Error(err))
		return metrics.OutcomeConflict, nil
	}
	if err != nil {
		return metrics.OutcomeError, err
	}

	if s.policy == config.CartPolicyOnPayment {
		if err := s.carts.Clear(ctx, c.UserID); err != nil {
			log.Warn("failed to clear cart after payment", zap.Error(err))
		}
	}

	if o == nil {
		return metrics.OutcomeDuplicate, nil
	}
	log.Info("successfully created order from checkout", zap.String("order_id", o.ID.String()))
	return metrics.OutcomeApplied, nil
}

func (s *service) MarkAsFailed(ctx context.Context, ev FailedEvent) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkAsFailed"),
		zap.String("checkout_id", ev.CheckoutID.String()),
		zap.String("reference_id", ev.ReferenceID),
	)

	c, outcome, err := s.lookup(ctx, ev.CheckoutID)
	if outcome != "" {
		return outcome, err
	}

	_, err = s.checkouts.MarkPaymentFailed(ctx, c)
	if apperror.IsConflict(err) {
		log.Info("checkout changed by a concurrent delivery", zap.Error(err))
		return metrics.OutcomeConflict, nil
	}
	if err != nil {
		return metrics.OutcomeError, err
	}

	log.Info("checkout reopened after payment failure", zap.String("status", ev.Status))
	return metrics.OutcomeApplied, nil
}
