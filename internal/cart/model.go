package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is a cart row joined with the live listing it points at.
type CartItem struct {
	MaterialID       uint            `json:"materialId"`
	SupplierID       uint            `json:"supplierId"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Unit             string          `json:"unit"`
	ImageURL         *string         `json:"imageUrl,omitempty"`
	Stock            int             `json:"stock"`
	MinOrderQuantity int             `json:"minOrderQuantity"`
	IsActive         bool            `json:"isActive"`
	Quantity         int             `json:"quantity"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Available reports whether the listing can currently cover the quantity.
func (i CartItem) Available() bool {
	return i.IsActive && i.Quantity <= i.Stock
}

type Cart struct {
	Items    []CartItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Notices  []string        `json:"notices,omitempty"`
	CanOrder bool            `json:"canOrder"`
}

// NewCart totals the items and collects availability notices.
func NewCart(items []CartItem) *Cart {
	c := &Cart{Items: items, Total: decimal.Zero, CanOrder: len(items) > 0}
	if c.Items == nil {
		c.Items = []CartItem{}
	}

	var shortages []Shortage
	for _, it := range items {
		c.Total = c.Total.Add(it.Subtotal())
		if !it.Available() {
			shortages = append(shortages, ShortageOf(it))
		}
	}
	if len(shortages) > 0 {
		c.CanOrder = false
		c.Notices = (&AvailabilityError{Shortages: shortages}).Notices()
	}
	return c
}
