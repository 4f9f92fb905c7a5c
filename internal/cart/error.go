package cart

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidQuantity  = errors.New("invalid cart quantity")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")
)

type Shortage struct {
	MaterialID uint   `json:"materialId"`
	Name       string `json:"name"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
}

func ShortageOf(it CartItem) Shortage {
	available := it.Stock
	if !it.IsActive {
		available = 0
	}
	return Shortage{
		MaterialID: it.MaterialID,
		Name:       it.Name,
		Requested:  it.Quantity,
		Available:  available,
	}
}

// AvailabilityError lists every line that cannot be covered by stock.
type AvailabilityError struct {
	Shortages []Shortage
}

func (e *AvailabilityError) Notices() []string {
	out := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		out = append(out, fmt.Sprintf("%s: only %d available", s.Name, s.Available))
	}
	return out
}

func (e *AvailabilityError) Error() string {
	return "insufficient stock: " + strings.Join(e.Notices(), "; ")
}
