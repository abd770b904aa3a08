// internal/payment/provider.go
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Provider creates hosted payment invoices with an external gateway. The
// gateway confirms payment asynchronously through the webhook handled by
// services.WebhookService.
type Provider interface {
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error)
}

type CreateInvoiceRequest struct {
	ExternalID  string
	Amount      int64
	PayerEmail  string
	Description string
	ExpiresIn   time.Duration
}

type Invoice struct {
	ID         string
	ExternalID string
	Status     string
	Amount     int64
	PaymentURL string
	ExpiresAt  time.Time
}

// WebhookEvent is the payload the gateway posts on payment status changes.
type WebhookEvent struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	PaidAt     string `json:"paid_at,omitempty"`
}

const (
	InvoiceStatusPending = "PENDING"
	InvoiceStatusPaid    = "PAID"
	InvoiceStatusExpired = "EXPIRED"
	InvoiceStatusFailed  = "FAILED"
)

// SignPayload computes the hex HMAC-SHA256 of a raw webhook body under the
// shared secret. The gateway sends the same value in the signature header.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a webhook signature in constant time. A missing
// secret or signature always fails: an unauthenticated webhook must never be
// trusted.
func VerifySignature(secret, signature string, payload []byte) bool {
	if secret == "" || signature == "" {
		return false
	}

	expected := SignPayload(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
