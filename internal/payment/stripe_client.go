// internal/payment/stripe_client.go
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"

	"github.com/akunbay/akunbay-backend/internal/config"
)

// StripeClient implements Provider on top of Stripe Checkout sessions. Used
// when PAYMENT_PROVIDER=stripe.
type StripeClient struct {
	currency string
}

func NewStripeClient(cfg config.PaymentConfig) *StripeClient {
	// Initialize Stripe
	stripe.Key = cfg.StripeSecretKey

	return &StripeClient{
		currency: "usd",
	}
}

func (c *StripeClient) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.ExternalID),
		ExpiresAt:         stripe.Int64(time.Now().Add(req.ExpiresIn).Unix()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(c.currency),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if req.PayerEmail != "" {
		params.CustomerEmail = stripe.String(req.PayerEmail)
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Invoice{
		ID:         sess.ID,
		ExternalID: req.ExternalID,
		Status:     InvoiceStatusPending,
		Amount:     req.Amount,
		PaymentURL: sess.URL,
		ExpiresAt:  time.Unix(sess.ExpiresAt, 0),
	}, nil
}
