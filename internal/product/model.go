package product

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Dimensions struct {
	Length decimal.Decimal `json:"length"`
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
}

// Value stores dimensions as a jsonb document.
func (d Dimensions) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *Dimensions) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = Dimensions{}
		return nil
	default:
		return fmt.Errorf("product: cannot scan %T into Dimensions", src)
	}
}

type Product struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Tags        []string        `json:"tags"`
	UserID      *uuid.UUID      `json:"user,omitempty"`
	Dimensions  Dimensions      `json:"dimensions"`
	Weight      decimal.Decimal `json:"weight"`
	IsPublished bool            `json:"isPublished"`
	SalesCount  int             `json:"salesCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Input is the writable part of a product, used for create and update.
type Input struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Images      []string        `json:"images"`
	Tags        []string        `json:"tags"`
	Dimensions  Dimensions      `json:"dimensions"`
	Weight      decimal.Decimal `json:"weight"`
	IsPublished bool            `json:"isPublished"`
}

type ListFilter struct {
	Category      string
	IncludeHidden bool
}

const (
	similarLimit     = 10
	bestSellerLimit  = 5
	newArrivalsLimit = 10
)
