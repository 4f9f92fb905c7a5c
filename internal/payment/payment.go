package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

type Gateway interface {
	// KeyID is the public key the client checkout widget needs.
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error)
	VerifySignature(orderID, paymentID, signature string) error
}

type OrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	KeyID    string `json:"keyId,omitempty"`
}

type PaymentDetails struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Captured bool   `json:"captured"`
}

// ToMinorUnits converts a rupee amount to paise, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
