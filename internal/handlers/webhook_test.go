// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/payment"
	"github.com/akunbay/akunbay-backend/internal/services"
)

func webhookTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Payment.WebhookSecret = "whsec_test"

	handler := NewWebhookHandler(services.NewWebhookService(nil, cfg, nil))

	r := gin.New()
	r.POST("/webhooks/payment", handler.HandlePaymentWebhook)
	return r
}

func postWebhook(r *gin.Engine, signature string, payload []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("POST", "/webhooks/payment", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	r := webhookTestRouter()
	payload := []byte(`{"id":"inv_1","external_id":"tx_1","status":"PAID","amount":100000}`)

	w := postWebhook(r, "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response["success"].(bool))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_SIGNATURE", errObj["code"])
}

func TestWebhookRejectsForgedSignature(t *testing.T) {
	r := webhookTestRouter()
	payload := []byte(`{"id":"inv_1","external_id":"tx_1","status":"PAID","amount":100000}`)
	forged := payment.SignPayload("wrong-secret", payload)

	w := postWebhook(r, forged, payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	r := webhookTestRouter()
	payload := []byte(`{"not":"an event"}`)
	signature := payment.SignPayload("whsec_test", payload)

	w := postWebhook(r, signature, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	errObj := response["error"].(map[string]interface{})
	assert.Equal(t, "MALFORMED_PAYLOAD", errObj["code"])
}

func TestWebhookAcknowledgesIgnoredStatus(t *testing.T) {
	r := webhookTestRouter()
	// A non-PAID status is acknowledged without touching storage at all.
	payload := []byte(`{"id":"inv_1","external_id":"tx_1","status":"EXPIRED","amount":100000}`)
	signature := payment.SignPayload("whsec_test", payload)

	w := postWebhook(r, signature, payload)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.True(t, data["acknowledged"].(bool))
	assert.False(t, data["processed"].(bool))
}
