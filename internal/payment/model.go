package payment

import (
	"bytes"
	"encoding/json"

	"storefront-be/internal/checkout"

	"github.com/google/uuid"
)

const Provider = "fawaterak"

// FlexString accepts a JSON string or number; the provider sends ids both ways.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// Method is one entry of the provider's payment method list.
type Method struct {
	PaymentID int    `json:"paymentId"`
	NameEn    string `json:"name_en"`
	NameAr    string `json:"name_ar"`
	Redirect  string `json:"redirect"`
	Logo      string `json:"logo"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type CartItem struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

type RedirectionURLs struct {
	SuccessURL string `json:"successUrl,omitempty"`
	FailURL    string `json:"failUrl,omitempty"`
	PendingURL string `json:"pendingUrl,omitempty"`
}

// InvoiceRequest is the invoiceInitPay body.
type InvoiceRequest struct {
	PaymentMethodID int             `json:"payment_method_id"`
	CartTotal       json.Number     `json:"cartTotal"`
	Currency        string          `json:"currency"`
	Customer        Customer        `json:"customer"`
	RedirectionURLs RedirectionURLs `json:"redirectionUrls"`
	CartItems       []CartItem      `json:"cartItems"`
	PayLoad         InvoicePayload  `json:"payLoad"`
}

// InvoicePayload is echoed back by the provider in every notification.
type InvoicePayload struct {
	CheckoutID uuid.UUID `json:"checkoutId"`
}

type Invoice struct {
	InvoiceID   FlexString      `json:"invoice_id"`
	InvoiceKey  string          `json:"invoice_key"`
	PaymentData json.RawMessage `json:"payment_data"`
}

type InitiateInput struct {
	CheckoutID      uuid.UUID `json:"checkoutId"`
	PaymentMethodID int       `json:"paymentMethodId"`
}

type InitiateResult struct {
	Checkout    checkout.Checkout `json:"checkout"`
	InvoiceID   string            `json:"invoiceId"`
	InvoiceKey  string            `json:"invoiceKey"`
	PaymentData json.RawMessage   `json:"paymentData,omitempty"`
}

// PaidEvent is a verified paid notification.
type PaidEvent struct {
	CheckoutID      uuid.UUID
	InvoiceID       string
	InvoiceKey      string
	Method          string
	InvoiceStatus   string
	ReferenceNumber string
}

// FailedEvent is a verified expired or failed notification.
type FailedEvent struct {
	CheckoutID  uuid.UUID
	ReferenceID string
	Method      string
	Status      string
}

// WebhookEvent is one row of the notification log.
type WebhookEvent struct {
	EventType      string
	EventID        string
	CheckoutID     uuid.UUID
	Payload        json.RawMessage
	SignatureValid bool
}
