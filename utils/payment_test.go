package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{price: "19.99", want: 1999},
		{price: "0.29", want: 29},
		{price: "10", want: 1000},
		{price: "12.345", want: 1234},
		{price: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMinorUnits(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestToMinorUnits_FromJSONFloat(t *testing.T) {
	var price decimal.Decimal
	require.NoError(t, price.UnmarshalJSON([]byte("19.99")))
	assert.Equal(t, int64(1999), ToMinorUnits(price))
}

func TestStripeGateway_CreatePaymentIntent(t *testing.T) {
	var gotPath, gotAmount, gotCurrency, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotPath = r.URL.Path
		gotAmount = r.PostForm.Get("amount")
		gotCurrency = r.PostForm.Get("currency")
		gotMethod = r.PostForm.Get("payment_method_types[0]")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":1999,"currency":"usd","client_secret":"pi_123_secret_abc"}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	gateway := NewStripeGatewayWithBackends("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	secret, err := gateway.CreatePaymentIntent(context.Background(), 1999, "usd")
	require.NoError(t, err)

	assert.Equal(t, "pi_123_secret_abc", secret)
	assert.Equal(t, "/v1/payment_intents", gotPath)
	assert.Equal(t, "1999", gotAmount)
	assert.Equal(t, "usd", gotCurrency)
	assert.Equal(t, "card", gotMethod)
}

func TestStripeGateway_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Amount must be at least $0.50 usd"}}`))
	}))
	defer srv.Close()

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
	})
	gateway := NewStripeGatewayWithBackends("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	_, err := gateway.CreatePaymentIntent(context.Background(), 10, "usd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create payment intent")
}
