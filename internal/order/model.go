package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessing    Status = "processing"
	StatusDelivered     Status = "delivered"
	StatusPaymentFailed Status = "payment failed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusDelivered, StatusPaymentFailed:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

const DefaultPaymentMethod = "razorpay"

type ShippingAddress struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// PaymentInfo correlates the order with the gateway.
type PaymentInfo struct {
	OrderID   *string `json:"razorpayOrderId,omitempty"`
	PaymentID *string `json:"razorpayPaymentId,omitempty"`
	Signature *string `json:"-"`
}

type Buyer struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	StallName *string `json:"stallName,omitempty"`
}

type MaterialInfo struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Unit       string  `json:"unit"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	SupplierID uint    `json:"supplierId"`
}

// Item is a line item. Price is the unit price snapshotted at checkout;
// revenue is always computed from it, never from the live listing.
type Item struct {
	ID         uint            `json:"id"`
	OrderID    uint            `json:"orderId"`
	MaterialID uint            `json:"materialId"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Material   *MaterialInfo   `json:"material,omitempty"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Order struct {
	ID              uint            `json:"id"`
	UserID          uint            `json:"userId"`
	Buyer           *Buyer          `json:"buyer,omitempty"`
	Items           []Item          `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	Currency        string          `json:"currency"`
	PaymentInfo     PaymentInfo     `json:"paymentInfo"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	FailedAt        *time.Time      `json:"failedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func ItemsTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ApplyStatus moves the order to s and stamps the matching timestamp the
// first time s is entered. Existing timestamps are never overwritten.
func (o *Order) ApplyStatus(s Status, now time.Time) {
	o.Status = s

	stamp := func(ts **time.Time) {
		if *ts == nil {
			t := now
			*ts = &t
		}
	}
	switch s {
	case StatusProcessing:
		stamp(&o.ProcessedAt)
	case StatusDelivered:
		stamp(&o.DeliveredAt)
	case StatusPaymentFailed:
		stamp(&o.FailedAt)
	}
}

var transitions = map[Status][]Status{
	StatusPaymentFailed: {StatusProcessing},
	StatusProcessing:    {StatusDelivered},
}

// CanTransition allows the forward moves in transitions. Re-applying the
// current status is a no-op and always allowed.
func CanTransition(from, to Status) error {
	if from == to {
		return nil
	}
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}

// MaterialSet is the set of listings one supplier owns.
type MaterialSet map[uint]struct{}

func NewMaterialSet(ids []uint) MaterialSet {
	set := make(MaterialSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s MaterialSet) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

// SupplierOrder is an order as one supplier may see it: only that
// supplier's line items, plus their subtotal.
type SupplierOrder struct {
	Order
	SupplierSubtotal decimal.Decimal `json:"supplierSubtotal"`
}

func (o Order) ProjectTo(set MaterialSet) SupplierOrder {
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		if set.Has(it.MaterialID) {
			items = append(items, it)
		}
	}
	o.Items = items
	return SupplierOrder{Order: o, SupplierSubtotal: ItemsTotal(items)}
}

type Filters struct {
	Status        *Status
	PaymentStatus *PaymentStatus
	StartDate     *time.Time
	EndDate       *time.Time
}

type Analytics struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	TotalItems        int             `json:"totalItems"`
	TotalVendors      int             `json:"totalVendors"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// AverageOrderValue is 0 when there are no orders.
func AverageOrderValue(revenue decimal.Decimal, orders int) decimal.Decimal {
	if orders == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(orders))).Round(2)
}

// Sale is one paid line item belonging to the supplier under analysis.
type Sale struct {
	OrderID       uint            `json:"orderId"`
	UserID        uint            `json:"userId"`
	VendorName    string          `json:"vendorName"`
	MaterialID    uint            `json:"materialId"`
	MaterialName  string          `json:"materialName"`
	Category      string          `json:"category"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (s Sale) Revenue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Summarize computes the same identities as the analytics query over an
// in-memory set of sales.
func Summarize(sales []Sale) Analytics {
	a := Analytics{TotalRevenue: decimal.Zero}
	orders := map[uint]struct{}{}
	vendors := map[uint]struct{}{}

	for _, s := range sales {
		a.TotalRevenue = a.TotalRevenue.Add(s.Revenue())
		a.TotalItems += s.Quantity
		orders[s.OrderID] = struct{}{}
		vendors[s.UserID] = struct{}{}
	}

	a.TotalOrders = len(orders)
	a.TotalVendors = len(vendors)
	a.AverageOrderValue = AverageOrderValue(a.TotalRevenue, a.TotalOrders)
	return a
}
