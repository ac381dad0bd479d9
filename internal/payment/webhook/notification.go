package webhook

import (
	"bytes"
	"encoding/json"
	"strings"

	"storefront-be/internal/apperror"
	"storefront-be/internal/payment"

	"github.com/google/uuid"
)

const (
	KindPaid    = "paid"
	KindExpired = "expired"
)

var (
	ErrEmptyBody         = apperror.Validation("empty webhook body")
	ErrMalformedBody     = apperror.Validation("malformed webhook body")
	ErrUnknownType       = apperror.Validation("unknown webhook type")
	ErrMissingCheckoutID = apperror.Validation("missing checkoutId in pay_load")
)

// Notification is either a PaidNotification or an ExpiredNotification.
type Notification interface {
	Kind() string
	// SignedString is the text the provider signs with HMAC-SHA256.
	SignedString() string
	Signature() string
	EventID() string
	payLoad() json.RawMessage
}

type PaidNotification struct {
	InvoiceID       string
	InvoiceKey      string
	PaymentMethod   string
	InvoiceStatus   string
	ReferenceNumber string
	HashKey         string
	PayLoad         json.RawMessage
}

func (n PaidNotification) Kind() string { return KindPaid }

func (n PaidNotification) SignedString() string {
	return "InvoiceId=" + n.InvoiceID + "&InvoiceKey=" + n.InvoiceKey + "&PaymentMethod=" + n.PaymentMethod
}

func (n PaidNotification) Signature() string { return n.HashKey }

func (n PaidNotification) EventID() string {
	return KindPaid + ":" + n.InvoiceID + ":" + n.InvoiceStatus
}

func (n PaidNotification) payLoad() json.RawMessage { return n.PayLoad }

type ExpiredNotification struct {
	ReferenceID   string
	PaymentMethod string
	Status        string
	HashKey       string
	PayLoad       json.RawMessage
}

func (n ExpiredNotification) Kind() string { return KindExpired }

func (n ExpiredNotification) SignedString() string {
	return "referenceId=" + n.ReferenceID + "&PaymentMethod=" + n.PaymentMethod
}

func (n ExpiredNotification) Signature() string { return n.HashKey }

func (n ExpiredNotification) EventID() string {
	return KindExpired + ":" + n.ReferenceID + ":" + n.Status
}

func (n ExpiredNotification) payLoad() json.RawMessage { return n.PayLoad }

type wireNotification struct {
	InvoiceID       payment.FlexString `json:"invoice_id"`
	InvoiceKey      string             `json:"invoice_key"`
	PaymentMethod   string             `json:"payment_method"`
	InvoiceStatus   string             `json:"invoice_status"`
	ReferenceNumber payment.FlexString `json:"referenceNumber"`

	ReferenceID      payment.FlexString `json:"referenceId"`
	PaymentMethodAlt string             `json:"paymentMethod"`
	Status           string             `json:"status"`

	HashKey string          `json:"hashKey"`
	PayLoad json.RawMessage `json:"pay_load"`
}

// Parse decodes a provider notification and decides its kind from the fields
// present. Required fields of the detected kind must be non-empty.
func Parse(body []byte) (Notification, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyBody
	}

	var w wireNotification
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, ErrMalformedBody
	}

	switch {
	case w.InvoiceID != "":
		var details []apperror.Detail
		if w.InvoiceKey == "" {
			details = append(details, apperror.Detail{Field: "invoice_key", Message: "invoice_key is required"})
		}
		if w.PaymentMethod == "" {
			details = append(details, apperror.Detail{Field: "payment_method", Message: "payment_method is required"})
		}
		if len(details) > 0 {
			return nil, apperror.Validation("invalid paid notification", details...)
		}
		return PaidNotification{
			InvoiceID:       w.InvoiceID.String(),
			InvoiceKey:      w.InvoiceKey,
			PaymentMethod:   w.PaymentMethod,
			InvoiceStatus:   w.InvoiceStatus,
			ReferenceNumber: w.ReferenceNumber.String(),
			HashKey:         w.HashKey,
			PayLoad:         w.PayLoad,
		}, nil

	case w.ReferenceID != "":
		if w.PaymentMethodAlt == "" {
			return nil, apperror.Validation("invalid expired notification",
				apperror.Detail{Field: "paymentMethod", Message: "paymentMethod is required"})
		}
		return ExpiredNotification{
			ReferenceID:   w.ReferenceID.String(),
			PaymentMethod: w.PaymentMethodAlt,
			Status:        w.Status,
			HashKey:       w.HashKey,
			PayLoad:       w.PayLoad,
		}, nil
	}

	return nil, ErrUnknownType
}

// CheckoutID extracts checkoutId from pay_load, which the provider sends
// either as an object or as a JSON-encoded string.
func CheckoutID(n Notification) (uuid.UUID, error) {
	raw := bytes.TrimSpace(n.payLoad())
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return uuid.Nil, ErrMissingCheckoutID
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return uuid.Nil, ErrMissingCheckoutID
		}
		raw = []byte(strings.TrimSpace(s))
	}

	var p struct {
		CheckoutID string `json:"checkoutId"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.CheckoutID == "" {
		return uuid.Nil, ErrMissingCheckoutID
	}

	id, err := uuid.Parse(p.CheckoutID)
	if err != nil {
		return uuid.Nil, apperror.Validation("checkoutId is not a valid id")
	}
	return id, nil
}
