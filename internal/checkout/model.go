package checkout

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPendingPayment  Status = "pending_payment"
	StatusCompleted       Status = "completed"
	StatusCanceled        Status = "canceled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// LineItem is a priced snapshot of a cart line taken at checkout time.
type LineItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Material  string          `json:"material"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type LineItems []LineItem

func (items LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range items {
		total = total.Add(li.Subtotal())
	}
	return total
}

func (items LineItems) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func (items *LineItems) Scan(src any) error {
	return scanJSON(src, items)
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	Phone      string `json:"phone"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(src any) error {
	return scanJSON(src, a)
}

// PaymentSession is what the provider returned when payment was initiated.
type PaymentSession struct {
	InvoiceID   string          `json:"invoiceId,omitempty"`
	InvoiceKey  string          `json:"invoiceKey,omitempty"`
	PaymentData json.RawMessage `json:"paymentData,omitempty"`
}

func (s *PaymentSession) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *PaymentSession) Scan(src any) error {
	return scanJSON(src, s)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("checkout: cannot scan %T into %T", src, dst)
	}
}

type Checkout struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user"`
	Items           LineItems       `json:"items"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	Finalized       bool            `json:"isFinalized"`
	FinalizedAt     *time.Time      `json:"finalizedAt,omitempty"`
	PaymentSession  *PaymentSession `json:"paymentDetails,omitempty"`
	Version         int             `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type CreateInput struct {
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}
