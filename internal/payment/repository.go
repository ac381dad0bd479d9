package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Repository is the provider notification log. A (provider, event_id) pair is
// stored once so replays can be recognised. An event whose processing failed
// is handed out again on redelivery instead of being reported as a duplicate.
type Repository interface {
	SavePaymentWebhook(ctx context.Context, ev WebhookEvent) (webhookID int64, isDuplicate bool, err error)
	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePaymentWebhook(ctx context.Context, ev WebhookEvent) (int64, bool, error) {
	const q = `
	INSERT INTO payment_webhooks (
		provider,
		event_type,
		event_id,
		checkout_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET
		process_error = NULL,
		payload = EXCLUDED.payload,
		checkout_id = EXCLUDED.checkout_id
	WHERE payment_webhooks.processed_at IS NULL
		AND payment_webhooks.process_error IS NOT NULL
	RETURNING id;
	`

	var checkoutID any
	if ev.CheckoutID != uuid.Nil {
		checkoutID = ev.CheckoutID
	}

	var id int64
	err := r.db.QueryRowContext(ctx, q,
		Provider,
		ev.EventType,
		ev.EventID,
		checkoutID,
		ev.SignatureValid,
		[]byte(ev.Payload),
	).Scan(&id)
	if err != nil {
		// Already processed, or still in flight
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, webhookID, reason)
	return err
}
