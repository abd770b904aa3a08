// internal/services/webhook_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/payment"
)

func testWebhookService() *WebhookService {
	cfg := &config.Config{}
	cfg.Payment.WebhookSecret = "whsec_test"
	return NewWebhookService(nil, cfg, nil)
}

func TestParseEventValid(t *testing.T) {
	svc := testWebhookService()
	payload := []byte(`{"id":"inv_123","external_id":"tx_456","status":"PAID","amount":100000,"paid_at":"2026-01-02T03:04:05Z"}`)
	signature := payment.SignPayload("whsec_test", payload)

	event, err := svc.ParseEvent(signature, payload)
	require.NoError(t, err)

	assert.Equal(t, "inv_123", event.ID)
	assert.Equal(t, "tx_456", event.ExternalID)
	assert.Equal(t, "PAID", event.Status)
	assert.Equal(t, int64(100000), event.Amount)
}

func TestParseEventRejectsBadSignature(t *testing.T) {
	svc := testWebhookService()
	payload := []byte(`{"id":"inv_123","external_id":"tx_456","status":"PAID","amount":100000}`)

	_, err := svc.ParseEvent("deadbeef", payload)
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidSignature))

	_, err = svc.ParseEvent("", payload)
	assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidSignature))
}

func TestParseEventRejectsMalformedPayload(t *testing.T) {
	svc := testWebhookService()

	cases := map[string][]byte{
		"not json":        []byte(`{{`),
		"missing id":      []byte(`{"external_id":"tx_456","status":"PAID","amount":100000}`),
		"missing status":  []byte(`{"id":"inv_123","external_id":"tx_456","amount":100000}`),
		"zero amount":     []byte(`{"id":"inv_123","external_id":"tx_456","status":"PAID","amount":0}`),
		"negative amount": []byte(`{"id":"inv_123","external_id":"tx_456","status":"PAID","amount":-5}`),
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			signature := payment.SignPayload("whsec_test", payload)
			_, err := svc.ParseEvent(signature, payload)
			assert.True(t, apperror.Is(err, apperror.ErrCodeMalformedPayload))
		})
	}
}

func TestClassifyPaidEvent(t *testing.T) {
	cases := map[string]struct {
		status        models.TransactionStatus
		paymentStatus models.PaymentStatus
		want          paidEventAction
	}{
		"pending transaction transitions": {
			status:        models.TransactionStatusPending,
			paymentStatus: models.PaymentStatusPending,
			want:          paidEventTransition,
		},
		"already paid is a duplicate": {
			status:        models.TransactionStatusProcessing,
			paymentStatus: models.PaymentStatusPaid,
			want:          paidEventDuplicate,
		},
		"disputed before payment is a mismatch": {
			status:        models.TransactionStatusDisputed,
			paymentStatus: models.PaymentStatusPending,
			want:          paidEventStateMismatch,
		},
		"cancelled before payment is a mismatch": {
			status:        models.TransactionStatusCancelled,
			paymentStatus: models.PaymentStatusPending,
			want:          paidEventStateMismatch,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			transaction := &models.Transaction{
				Status:        tc.status,
				PaymentStatus: tc.paymentStatus,
			}
			assert.Equal(t, tc.want, classifyPaidEvent(transaction))
		})
	}
}
