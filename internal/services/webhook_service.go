// internal/services/webhook_service.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/payment"
)

// WebhookService reconciles asynchronous payment-status events from the
// gateway. Stateless per event and idempotent by payment reference: duplicate
// deliveries after the first successful transition are no-ops.
type WebhookService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
}

// WebhookOutcome tells the handler what to acknowledge. Business rejections
// are acknowledged as success so the gateway stops retrying, but the reason
// is logged for manual reconciliation.
type WebhookOutcome struct {
	Acknowledged bool
	Transitioned bool
	Reason       string
}

func NewWebhookService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *WebhookService {
	return &WebhookService{
		db:                  db,
		config:              cfg,
		notificationService: notificationService,
	}
}

// ParseEvent authenticates and decodes a raw webhook delivery. Signature and
// payload failures are hard rejections (the gateway is expected to stop
// retrying on 4xx).
func (s *WebhookService) ParseEvent(signature string, rawPayload []byte) (*payment.WebhookEvent, error) {
	if !payment.VerifySignature(s.config.Payment.WebhookSecret, signature, rawPayload) {
		return nil, apperror.ErrInvalidSignature
	}

	var event payment.WebhookEvent
	if err := json.Unmarshal(rawPayload, &event); err != nil {
		return nil, apperror.ErrMalformedPayload
	}

	if event.ID == "" || event.ExternalID == "" || event.Status == "" || event.Amount <= 0 {
		return nil, apperror.ErrMalformedPayload
	}

	return &event, nil
}

// paidEventAction classifies a verified paid event against the current row
// state before any mutation.
type paidEventAction int

const (
	// paidEventTransition: transaction still pending on both axes, apply it.
	paidEventTransition paidEventAction = iota
	// paidEventDuplicate: payment already recorded, delivery is a retry.
	paidEventDuplicate
	// paidEventStateMismatch: funds captured but the transaction left pending
	// through another path (dispute, expiry cancellation) before payment
	// arrived. Needs manual reconciliation, not a silent duplicate.
	paidEventStateMismatch
)

func classifyPaidEvent(transaction *models.Transaction) paidEventAction {
	if transaction.PaymentStatus != models.PaymentStatusPending {
		return paidEventDuplicate
	}
	if transaction.Status != models.TransactionStatusPending {
		return paidEventStateMismatch
	}
	return paidEventTransition
}

// HandlePaymentEvent applies a verified event to its transaction. Always
// check-then-transition: out-of-order and duplicate deliveries must not
// blind-overwrite state.
func (s *WebhookService) HandlePaymentEvent(event *payment.WebhookEvent) (*WebhookOutcome, error) {
	if !strings.EqualFold(event.Status, payment.InvoiceStatusPaid) {
		// Non-payment statuses are acknowledged without side effects so the
		// gateway does not retry them forever.
		return &WebhookOutcome{Acknowledged: true, Reason: "ignored status " + event.Status}, nil
	}

	action := paidEventDuplicate
	var transaction models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_reference = ?", event.ID).
			First(&transaction).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.New(apperror.ErrCodeNotFound, "no transaction for payment reference")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if action = classifyPaidEvent(&transaction); action != paidEventTransition {
			return nil
		}

		updates := map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"status":         models.TransactionStatusProcessing,
		}
		if err := tx.Model(&transaction).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to transition transaction: %w", err)
		}

		return nil
	})

	if err != nil {
		if appErr, ok := apperror.As(err); ok {
			// Business rejection: tell the gateway OK, log for reconciliation.
			logrus.WithFields(logrus.Fields{
				"payment_reference": event.ID,
				"external_id":       event.ExternalID,
				"reason":            appErr.Message,
			}).Warn("Payment webhook rejected by business rule")
			return &WebhookOutcome{Acknowledged: true, Reason: appErr.Message}, nil
		}
		return nil, err
	}

	switch action {
	case paidEventTransition:
		s.notificationService.NotifyPaymentReceived(transaction.BuyerID, transaction.SellerID, transaction.ID)
		logrus.WithFields(logrus.Fields{
			"transaction_id":    transaction.ID,
			"payment_reference": event.ID,
			"amount":            event.Amount,
		}).Info("Payment confirmed")
	case paidEventStateMismatch:
		logrus.WithFields(logrus.Fields{
			"transaction_id":    transaction.ID,
			"payment_reference": event.ID,
			"status":            transaction.Status,
			"amount":            event.Amount,
		}).Warn("Payment captured for transaction no longer pending")
	default:
		logrus.WithField("payment_reference", event.ID).Info("Duplicate payment webhook ignored")
	}

	outcome := &WebhookOutcome{Acknowledged: true, Transitioned: action == paidEventTransition}
	if action == paidEventStateMismatch {
		outcome.Reason = "payment captured while " + string(transaction.Status)
	}
	return outcome, nil
}
