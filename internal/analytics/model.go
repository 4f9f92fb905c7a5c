package analytics

import (
	"time"

	"rawmart-be/internal/order"

	"github.com/shopspring/decimal"
)

// Point is one day or month of sales.
type Point struct {
	Period   string          `json:"period"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
	Quantity int             `json:"quantity"`
}

// Bucket groups sales by a key. Orders counts distinct parent orders.
type Bucket struct {
	Key      string          `json:"key"`
	Revenue  decimal.Decimal `json:"revenue"`
	Orders   int             `json:"orders"`
	Quantity int             `json:"quantity"`
	Vendors  int             `json:"vendors,omitempty"`
}

type MaterialStat struct {
	MaterialID uint            `json:"materialId"`
	Name       string          `json:"name"`
	Category   string          `json:"category"`
	Revenue    decimal.Decimal `json:"revenue"`
	Quantity   int             `json:"quantity"`
	Orders     int             `json:"orders"`
}

type Dashboard struct {
	TimeRange          TimeRange       `json:"timeRange"`
	From               *time.Time      `json:"from,omitempty"`
	To                 time.Time       `json:"to"`
	Summary            order.Analytics `json:"summary"`
	Daily              []Point         `json:"daily"`
	Monthly            []Point         `json:"monthly"`
	Categories         []Bucket        `json:"categories"`
	PaymentMethods     []Bucket        `json:"paymentMethods"`
	VendorSpend        []Bucket        `json:"vendorSpend"`
	OrderSizes         []Bucket        `json:"orderSizes"`
	TopMaterials       []MaterialStat  `json:"topMaterials"`
	StatusDistribution []Bucket        `json:"statusDistribution"`
}
