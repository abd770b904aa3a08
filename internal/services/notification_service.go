// internal/services/notification_service.go
package services

import (
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/models"
)

// NotificationService persists in-app notification rows. Delivery is
// best-effort: callers dispatch after their own commit, and a failure here is
// logged for reconciliation but never surfaces to the triggering operation.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) Notify(userID uuid.UUID, notifType, title, message string, relatedID *uuid.UUID) error {
	notification := &models.Notification{
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	}

	if err := s.db.Create(notification).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// NotifyAsync runs Notify on a recovered goroutine. Used from post-commit
// hooks so a notification failure cannot roll back the transition that
// triggered it.
func (s *NotificationService) NotifyAsync(userID uuid.UUID, notifType, title, message string, relatedID *uuid.UUID) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("panic in notification goroutine: %v\n%s", r, debug.Stack())
			}
		}()

		if err := s.Notify(userID, notifType, title, message, relatedID); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"type":    notifType,
			}).Error("Failed to deliver notification")
		}
	}()
}

func (s *NotificationService) NotifySale(sellerID uuid.UUID, txID uuid.UUID, listingTitle string) {
	s.NotifyAsync(sellerID, "sale", "Your listing was purchased",
		fmt.Sprintf("A buyer started a purchase of %q. Funds are held in escrow until completion.", listingTitle), &txID)
}

func (s *NotificationService) NotifyPaymentReceived(buyerID, sellerID, txID uuid.UUID) {
	s.NotifyAsync(buyerID, "payment", "Payment confirmed",
		"Your payment was received. Credentials will be available once the transaction completes.", &txID)
	s.NotifyAsync(sellerID, "payment", "Buyer payment confirmed",
		"The buyer has paid. The escrow is now processing.", &txID)
}

func (s *NotificationService) NotifyDisputeOpened(sellerID, disputeID uuid.UUID) {
	s.NotifyAsync(sellerID, "dispute", "A dispute was opened",
		"The buyer opened a dispute on one of your transactions. You can respond in the dispute thread.", &disputeID)
}

func (s *NotificationService) NotifyDisputeResolved(buyerID, sellerID, disputeID uuid.UUID, resolution models.DisputeResolution) {
	message := fmt.Sprintf("Your dispute was resolved: %s.", resolution)
	s.NotifyAsync(buyerID, "dispute", "Dispute resolved", message, &disputeID)
	s.NotifyAsync(sellerID, "dispute", "Dispute resolved", message, &disputeID)
}
