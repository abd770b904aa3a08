// internal/payment/invoice_client.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/akunbay/akunbay-backend/internal/config"
)

// InvoiceClient talks to the hosted invoice gateway over HTTP. Outbound calls
// are throttled client-side so a burst of purchases cannot trip the gateway's
// own limits.
type InvoiceClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewInvoiceClient(cfg config.PaymentConfig) *InvoiceClient {
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 5
	}

	return &InvoiceClient{
		baseURL: cfg.InvoiceBaseURL,
		apiKey:  cfg.InvoiceAPIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
	}
}

type createInvoiceBody struct {
	ExternalID      string `json:"external_id"`
	Amount          int64  `json:"amount"`
	PayerEmail      string `json:"payer_email,omitempty"`
	Description     string `json:"description,omitempty"`
	InvoiceDuration int64  `json:"invoice_duration,omitempty"`
}

type invoiceResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	InvoiceURL string `json:"invoice_url"`
	ExpiryDate string `json:"expiry_date"`
}

func (c *InvoiceClient) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("invoice request throttled: %w", err)
	}

	body := createInvoiceBody{
		ExternalID:      req.ExternalID,
		Amount:          req.Amount,
		PayerEmail:      req.PayerEmail,
		Description:     req.Description,
		InvoiceDuration: int64(req.ExpiresIn.Seconds()),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build invoice request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("invoice request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invoice gateway returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed invoiceResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode invoice response: %w", err)
	}

	invoice := &Invoice{
		ID:         parsed.ID,
		ExternalID: parsed.ExternalID,
		Status:     parsed.Status,
		Amount:     parsed.Amount,
		PaymentURL: parsed.InvoiceURL,
	}

	if parsed.ExpiryDate != "" {
		if expiry, err := time.Parse(time.RFC3339, parsed.ExpiryDate); err == nil {
			invoice.ExpiresAt = expiry
		}
	}

	return invoice, nil
}
