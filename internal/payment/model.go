package payment

import "encoding/json"

type CallbackSource string

const (
	SourceOrder   CallbackSource = "order"
	SourceSurplus CallbackSource = "surplus"
)

// Callback is one client-relayed gateway callback, journaled before it is
// applied.
type Callback struct {
	Source         CallbackSource
	ReferenceID    uint
	GatewayOrderID string
	PaymentID      string
	Outcome        string
	SignatureValid bool
	Payload        json.RawMessage
}

// CallbackParams is the checkout widget's result as relayed by the client.
type CallbackParams struct {
	GatewayOrderID string `json:"razorpayOrderId"`
	PaymentID      string `json:"razorpayPaymentId"`
	Signature      string `json:"razorpaySignature"`
	Failed         bool   `json:"failed"`
	Reason         string `json:"reason,omitempty"`
}

func (p CallbackParams) Outcome() string {
	if p.Failed {
		return "failed"
	}
	return "success"
}
