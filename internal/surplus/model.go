package surplus

import (
	"time"

	"rawmart-be/internal/material"
	"rawmart-be/internal/payment"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusCompleted Status = "Completed"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Surplus is excess stock a vendor offers to suppliers.
type Surplus struct {
	ID             uint              `json:"id"`
	VendorID       uint              `json:"vendorId"`
	VendorName     string            `json:"vendorName"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Category       material.Category `json:"category"`
	Quantity       int               `json:"quantity"`
	Unit           string            `json:"unit"`
	Price          decimal.Decimal   `json:"price"`
	ExpiryDate     *time.Time        `json:"expiryDate,omitempty"`
	Location       string            `json:"location"`
	Status         Status            `json:"status"`
	AcceptedBy     *uint             `json:"acceptedBy,omitempty"`
	AcceptedAt     *time.Time        `json:"acceptedAt,omitempty"`
	PaymentStatus  PaymentStatus     `json:"paymentStatus"`
	PaymentOrderID *string           `json:"paymentOrderId,omitempty"`
	PaymentID      *string           `json:"paymentId,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Total is the amount the accepting supplier pays.
func (s Surplus) Total() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

type CreateParams struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    material.Category `json:"category"`
	Quantity    int               `json:"quantity"`
	Unit        string            `json:"unit"`
	Price       decimal.Decimal   `json:"price"`
	ExpiryDate  *time.Time        `json:"expiryDate"`
	Location    string            `json:"location"`
}

// UpdateParams leaves nil fields unchanged.
type UpdateParams struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Category    *material.Category `json:"category"`
	Quantity    *int               `json:"quantity"`
	Unit        *string            `json:"unit"`
	Price       *decimal.Decimal   `json:"price"`
	ExpiryDate  *time.Time         `json:"expiryDate"`
	Location    *string            `json:"location"`
}

// ListFilter defaults to pending listings.
type ListFilter struct {
	Status   *Status
	Category *material.Category
}

type AcceptResult struct {
	Surplus *Surplus              `json:"surplus"`
	Payment *payment.GatewayOrder `json:"payment"`
}
