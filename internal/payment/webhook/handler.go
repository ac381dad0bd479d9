package webhook

import (
	"context"
	"io"
	"net/http"

	"storefront-be/internal/apperror"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/payment"
	"storefront-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Processor applies verified notifications.
type Processor interface {
	MarkAsPaid(ctx context.Context, ev payment.PaidEvent) (string, error)
	MarkAsFailed(ctx context.Context, ev payment.FailedEvent) (string, error)
}

type Recorder interface {
	Webhook(kind, outcome string)
}

type Handler struct {
	processor Processor
	events    payment.Repository
	verifier  *Verifier
	recorder  Recorder
}

func NewWebhookHandler(processor Processor, events payment.Repository, verifier *Verifier, recorder Recorder) *Handler {
	return &Handler{
		processor: processor,
		events:    events,
		verifier:  verifier,
		recorder:  recorder,
	}
}

func (h *Handler) record(kind, outcome string) {
	if h.recorder != nil {
		h.recorder.Webhook(kind, outcome)
	}
}

func ack(w http.ResponseWriter, message string) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

// PaymentWebhookHandler serves both the paid and the expired/failed
// callbacks; the notification kind comes from the body.
func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("handler", "payment_webhook"))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.record("unknown", metrics.OutcomeInvalid)
		utils.WriteError(w, r, ErrMalformedBody)
		return
	}

	n, err := Parse(body)
	if err != nil {
		log.Warn("rejecting unparseable webhook", zap.Error(err))
		h.record("unknown", metrics.OutcomeInvalid)
		utils.WriteError(w, r, err)
		return
	}
	kind := n.Kind()

	if !h.verifier.Verify(n) {
		log.Warn("invalid webhook signature", zap.String("kind", kind))
		h.record(kind, metrics.OutcomeRejected)
		utils.WriteError(w, r, apperror.Authentication("invalid hash key"))
		return
	}

	checkoutID, err := CheckoutID(n)
	if err != nil {
		log.Warn("webhook without usable checkoutId", zap.String("kind", kind), zap.Error(err))
		h.record(kind, metrics.OutcomeInvalid)
		utils.WriteError(w, r, err)
		return
	}
	log = log.With(zap.String("kind", kind), zap.String("checkout_id", checkoutID.String()))

	webhookID, dup, err := h.events.SavePaymentWebhook(ctx, payment.WebhookEvent{
		EventType:      kind,
		EventID:        n.EventID(),
		CheckoutID:     checkoutID,
		Payload:        body,
		SignatureValid: true,
	})
	if err != nil {
		// The log only short-circuits replays; processing is idempotent without it.
		log.Error("failed to store webhook", zap.Error(err))
	}
	if dup {
		log.Info("duplicate webhook ignored", zap.String("event_id", n.EventID()))
		h.record(kind, metrics.OutcomeDuplicate)
		ack(w, "Acknowledged: duplicate notification.")
		return
	}

	var outcome string
	switch v := n.(type) {
	case PaidNotification:
		outcome, err = h.processor.MarkAsPaid(ctx, payment.PaidEvent{
			CheckoutID:      checkoutID,
			InvoiceID:       v.InvoiceID,
			InvoiceKey:      v.InvoiceKey,
			Method:          v.PaymentMethod,
			InvoiceStatus:   v.InvoiceStatus,
			ReferenceNumber: v.ReferenceNumber,
		})
	case ExpiredNotification:
		outcome, err = h.processor.MarkAsFailed(ctx, payment.FailedEvent{
			CheckoutID:  checkoutID,
			ReferenceID: v.ReferenceID,
			Method:      v.PaymentMethod,
			Status:      v.Status,
		})
	}

	if err != nil {
		log.Error("failed to process webhook", zap.Error(err))
		if webhookID != 0 {
			if mErr := h.events.MarkWebhookFailed(ctx, webhookID, err.Error()); mErr != nil {
				log.Error("failed to mark webhook failed", zap.Error(mErr))
			}
		}
		h.record(kind, metrics.OutcomeError)
		ack(w, "Webhook acknowledged.")
		return
	}

	if webhookID != 0 {
		if mErr := h.events.MarkWebhookProcessed(ctx, webhookID); mErr != nil {
			log.Error("failed to mark webhook processed", zap.Error(mErr))
		}
	}

	log.Info("webhook processed", zap.String("outcome", outcome))
	h.record(kind, outcome)
	ack(w, "Webhook processed successfully.")
}
