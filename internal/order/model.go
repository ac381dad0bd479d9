package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"storefront-be/internal/checkout"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// PaymentDetails is what the provider reported when the payment settled.
type PaymentDetails struct {
	Method          string `json:"method"`
	InvoiceID       string `json:"invoiceId"`
	ReferenceNumber string `json:"referenceNumber,omitempty"`
}

func (d PaymentDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *PaymentDetails) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		return nil
	default:
		return fmt.Errorf("order: cannot scan %T into PaymentDetails", src)
	}
}

type Order struct {
	ID              uuid.UUID                `json:"id"`
	OrderNumber     string                   `json:"orderNumber"`
	UserID          uuid.UUID                `json:"user"`
	CheckoutID      uuid.UUID                `json:"checkout"`
	Items           checkout.LineItems       `json:"orderItems"`
	TotalPrice      decimal.Decimal          `json:"totalPrice"`
	ShippingAddress checkout.ShippingAddress `json:"shippingAddress"`
	Status          Status                   `json:"status"`
	PaymentDetails  PaymentDetails           `json:"paymentDetails"`
	DeliveredAt     *time.Time               `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

type UpdateStatusInput struct {
	Status Status `json:"status"`
}

// Materialize builds the order for a paid checkout. The checkout is not
// modified and shares no memory with the result.
func Materialize(c checkout.Checkout, details PaymentDetails) Order {
	items := make(checkout.LineItems, len(c.Items))
	copy(items, c.Items)

	return Order{
		UserID:          c.UserID,
		CheckoutID:      c.ID,
		Items:           items,
		TotalPrice:      c.TotalPrice,
		ShippingAddress: c.ShippingAddress,
		Status:          StatusProcessing,
		PaymentDetails:  details,
	}
}
