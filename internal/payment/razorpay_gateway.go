package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

type razorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) Gateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("Razorpay credentials are empty")
	}

	return &razorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*GatewayOrder, error) {
	amount := ToMinorUnits(req.Amount)
	log := logger.FromCtx(ctx).With(
		zap.String("receipt", req.Receipt),
		zap.Int64("amount", amount),
		zap.String("currency", req.Currency),
	)

	if amount <= 0 {
		return nil, fmt.Errorf("razorpay: amount must be positive, got %d", amount)
	}

	body := map[string]interface{}{
		"amount":   amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	}

	var res GatewayOrder
	if err := g.do(ctx, http.MethodPost, "/orders", body, &res); err != nil {
		log.Error("Razorpay order creation failed", zap.Error(err))
		return nil, err
	}

	res.KeyID = g.keyID
	log.Info("Razorpay order created", zap.String("gateway_order_id", res.ID))
	return &res, nil
}

func (g *razorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	var res PaymentDetails
	if err := g.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, &res); err != nil {
		logger.FromCtx(ctx).Error("Razorpay payment lookup failed",
			zap.String("payment_id", paymentID),
			zap.Error(err),
		)
		return nil, err
	}
	return &res, nil
}

func (g *razorpayGateway) VerifySignature(orderID, paymentID, signature string) error {
	return verify(g.keySecret, orderID, paymentID, signature)
}

func (g *razorpayGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("razorpay request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay error %d (%s): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Description)
		}
		return fmt.Errorf("razorpay error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to decode razorpay response: %w", err)
	}
	return nil
}
