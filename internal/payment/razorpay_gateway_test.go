package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper allows us to mock the HTTP response
type MockRoundTripper func(req *http.Request) (*http.Response, error)

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestRazorpayGateway_CreateOrder(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "rzp_secret").(*razorpayGateway)
	ctx := context.Background()

	req := OrderRequest{
		Amount:   decimal.RequireFromString("250.50"),
		Currency: "INR",
		Receipt:  "order_12",
		Notes:    map[string]string{"orderId": "12"},
	}

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "https://api.razorpay.com/v1/orders", r.URL.String())

			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "rzp_secret", pass)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, float64(25050), body["amount"])
			assert.Equal(t, "INR", body["currency"])
			assert.Equal(t, "order_12", body["receipt"])

			return jsonResponse(http.StatusOK, `{"id":"order_Xyz","entity":"order","amount":25050,"currency":"INR","receipt":"order_12","status":"created"}`), nil
		})

		res, err := gw.CreateOrder(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "order_Xyz", res.ID)
		assert.Equal(t, int64(25050), res.Amount)
		assert.Equal(t, "rzp_test_key", res.KeyID)
	})

	t.Run("API error", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusBadRequest, `{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`), nil
		})

		_, err := gw.CreateOrder(ctx, req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount exceeds maximum")
	})

	t.Run("Transport error", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("network down")
		})

		_, err := gw.CreateOrder(ctx, req)
		assert.Error(t, err)
	})

	t.Run("Zero amount", func(t *testing.T) {
		_, err := gw.CreateOrder(ctx, OrderRequest{Amount: decimal.Zero, Currency: "INR"})
		assert.Error(t, err)
	})
}

func TestRazorpayGateway_FetchPayment(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "rzp_secret").(*razorpayGateway)

	gw.httpClient.Transport = MockRoundTripper(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "https://api.razorpay.com/v1/payments/pay_1", r.URL.String())
		return jsonResponse(http.StatusOK, `{"id":"pay_1","order_id":"order_Xyz","amount":25050,"currency":"INR","status":"captured","method":"upi","captured":true}`), nil
	})

	p, err := gw.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "captured", p.Status)
	assert.Equal(t, "upi", p.Method)
	assert.True(t, p.Captured)
}

func TestSignature(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "rzp_secret")
	sig := Sign("rzp_secret", "order_Xyz", "pay_1")

	assert.Len(t, sig, 64)
	assert.NoError(t, gw.VerifySignature("order_Xyz", "pay_1", sig))

	assert.ErrorIs(t, gw.VerifySignature("order_Xyz", "pay_2", sig), ErrInvalidSignature)
	assert.ErrorIs(t, gw.VerifySignature("order_Xyz", "pay_1", ""), ErrInvalidSignature)
	assert.ErrorIs(t, gw.VerifySignature("order_Xyz", "pay_1", Sign("other", "order_Xyz", "pay_1")), ErrInvalidSignature)

	unkeyed := NewRazorpayGateway("", "")
	assert.ErrorIs(t, unkeyed.VerifySignature("order_Xyz", "pay_1", Sign("", "order_Xyz", "pay_1")), ErrInvalidSignature)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(25050), ToMinorUnits(decimal.RequireFromString("250.50")))
	assert.Equal(t, int64(1), ToMinorUnits(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(10000), ToMinorUnits(decimal.NewFromInt(100)))
}
