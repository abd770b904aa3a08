// internal/payment/provider_test.go
package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignatureRoundtrip(t *testing.T) {
	payload := []byte(`{"id":"inv_123","external_id":"tx_456","status":"PAID","amount":100000}`)
	signature := SignPayload("whsec_test", payload)

	assert.True(t, VerifySignature("whsec_test", signature, payload))
}

func TestVerifySignatureRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"amount":100000}`)
	signature := SignPayload("whsec_test", payload)

	tampered := []byte(`{"amount":999999}`)
	assert.False(t, VerifySignature("whsec_test", signature, tampered))
}

func TestVerifySignatureRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"amount":100000}`)
	signature := SignPayload("whsec_test", payload)

	assert.False(t, VerifySignature("whsec_other", signature, payload))
}

func TestVerifySignatureRejectsMissingInputs(t *testing.T) {
	payload := []byte(`{}`)

	// No configured secret must never validate, whatever the signature says.
	assert.False(t, VerifySignature("", SignPayload("", payload), payload))
	assert.False(t, VerifySignature("whsec_test", "", payload))
}
