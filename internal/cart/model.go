package cart

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Owner is either an authenticated user or an anonymous guest.
type Owner struct {
	UserID  *uuid.UUID
	GuestID string
}

func (o Owner) IsZero() bool {
	return o.UserID == nil && o.GuestID == ""
}

type Item struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Material  string          `json:"material"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func (it Item) sameLine(productID uuid.UUID, material, color string) bool {
	return it.ProductID == productID && it.Material == material && it.Color == color
}

func (it Item) Subtotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Items is stored as a jsonb array.
type Items []Item

func (items Items) Value() (driver.Value, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(items)
}

func (items *Items) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = Items{}
		return nil
	default:
		return fmt.Errorf("cart: cannot scan %T into Items", src)
	}
}

type Cart struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user,omitempty"`
	GuestID    *string         `json:"gestId,omitempty"`
	Items      Items           `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func newCart(owner Owner) *Cart {
	c := &Cart{Items: Items{}, UserID: owner.UserID}
	if owner.UserID == nil && owner.GuestID != "" {
		guest := owner.GuestID
		c.GuestID = &guest
	}
	return c
}

func (c *Cart) indexOf(productID uuid.UUID, material, color string) int {
	for i, it := range c.Items {
		if it.sameLine(productID, material, color) {
			return i
		}
	}
	return -1
}

// Add merges it into an existing line with the same product, material and
// color, or appends a new line.
func (c *Cart) Add(it Item) {
	if i := c.indexOf(it.ProductID, it.Material, it.Color); i >= 0 {
		c.Items[i].Quantity += it.Quantity
		c.Items[i].Price = it.Price
		c.Items[i].Name = it.Name
	} else {
		c.Items = append(c.Items, it)
	}
	c.recalculate()
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (c *Cart) SetQuantity(productID uuid.UUID, material, color string, qty int) error {
	i := c.indexOf(productID, material, color)
	if i < 0 {
		return ErrCartItemNotFound
	}
	if qty == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = qty
	}
	c.recalculate()
	return nil
}

// Merge folds other's lines into c.
func (c *Cart) Merge(other *Cart) {
	for _, it := range other.Items {
		if i := c.indexOf(it.ProductID, it.Material, it.Color); i >= 0 {
			c.Items[i].Quantity += it.Quantity
		} else {
			c.Items = append(c.Items, it)
		}
	}
	c.recalculate()
}

func (c *Cart) recalculate() {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	c.TotalPrice = total
}

type AddItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Material  string    `json:"material"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
}

type UpdateItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Material  string    `json:"material"`
	Color     string    `json:"color"`
	Quantity  *int      `json:"quantity"`
}
