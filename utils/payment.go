package utils

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeGateway creates card payment intents with Stripe
type StripeGateway struct {
	intents *paymentintent.Client
}

// NewStripeGateway creates a gateway authenticated with the secret key
func NewStripeGateway(secretKey string) *StripeGateway {
	return NewStripeGatewayWithBackends(secretKey, nil)
}

// NewStripeGatewayWithBackends lets callers point the gateway at another API host
func NewStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) *StripeGateway {
	sc := client.New(secretKey, backends)
	return &StripeGateway{intents: sc.PaymentIntents}
}

// CreatePaymentIntent authorizes amount (minor units) in currency and returns the client secret
func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.intents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}

var hundred = decimal.NewFromInt(100)

// ToMinorUnits converts a decimal amount to cents, truncating any fraction of a cent
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).IntPart()
}
