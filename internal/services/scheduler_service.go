// internal/services/scheduler_service.go
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

// SchedulerService drives every time-based transition in the escrow engine.
// It is an explicit service owned by the process lifecycle: main starts it
// after the database is up and stops it on shutdown. Each job is idempotent
// and operates on disjoint row sets via predicate filters, so overlapping
// runs at low concurrency are safe.
type SchedulerService struct {
	db             *gorm.DB
	config         *config.Config
	disputeService *DisputeService

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type schedulerJob struct {
	name string
	run  func() (int, error)
}

func NewSchedulerService(db *gorm.DB, cfg *config.Config, disputeService *DisputeService) *SchedulerService {
	return &SchedulerService{
		db:             db,
		config:         cfg,
		disputeService: disputeService,
	}
}

func (s *SchedulerService) jobs() []schedulerJob {
	return []schedulerJob{
		{"expire_listings", s.ExpireListings},
		{"release_abandoned_listings", s.ReleaseAbandonedListings},
		{"auto_complete_transactions", s.AutoCompleteTransactions},
		{"disburse_transactions", s.DisburseTransactions},
		{"auto_resolve_disputes", s.disputeService.AutoResolveExpired},
		{"cleanup_credential_access", s.CleanupCredentialAccess},
		{"cleanup_idempotency_records", s.CleanupIdempotencyRecords},
	}
}

// Start launches the periodic loop. Blocks only until the goroutine is up.
func (s *SchedulerService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.config.Scheduler.Interval)
		defer ticker.Stop()

		logrus.WithField("interval", s.config.Scheduler.Interval).Info("Scheduler started")

		for {
			select {
			case <-ctx.Done():
				logrus.Info("Scheduler stopped")
				return
			case <-ticker.C:
				s.runAll()
			}
		}
	}()
}

func (s *SchedulerService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SchedulerService) runAll() {
	for _, job := range s.jobs() {
		affected, err := job.run()
		if err != nil {
			logrus.WithError(err).WithField("job", job.name).Error("Scheduled job failed")
			continue
		}
		// Zero matching rows is the normal case, logged at debug only.
		entry := logrus.WithFields(logrus.Fields{"job": job.name, "affected": affected})
		if affected > 0 {
			entry.Info("Scheduled job completed")
		} else {
			entry.Debug("Scheduled job completed")
		}
	}
}

// ExpireListings retires active listings past their shelf life. Listings
// created before the expiry stamp existed fall back to a created_at cutoff.
func (s *SchedulerService) ExpireListings() (int, error) {
	now := time.Now()
	cutoff := now.Add(-s.config.Escrow.ListingTTL)

	result := s.db.Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive).
		Where("(expires_at IS NOT NULL AND expires_at < ?) OR (expires_at IS NULL AND created_at < ?)", now, cutoff).
		Update("status", models.ListingStatusExpired)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire listings: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// ReleaseAbandonedListings reverts sold listings whose purchase was never
// paid inside the payment window. The linked transaction is cancelled first
// so the unique live-transaction predicate frees up before the listing goes
// back on sale.
func (s *SchedulerService) ReleaseAbandonedListings() (int, error) {
	now := time.Now()

	var stale []models.Transaction
	if err := s.db.
		Where("status = ? AND payment_status IN ? AND payment_expires_at IS NOT NULL AND payment_expires_at < ?",
			models.TransactionStatusPending,
			[]models.PaymentStatus{models.PaymentStatusPending, models.PaymentStatusFailed},
			now).
		Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("failed to query abandoned purchases: %w", err)
	}

	released := 0
	for i := range stale {
		transaction := &stale[i]

		err := s.db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Transaction{}).
				Where("id = ? AND status = ?", transaction.ID, models.TransactionStatusPending).
				Updates(map[string]interface{}{
					"status":         models.TransactionStatusCancelled,
					"payment_status": models.PaymentStatusExpired,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Paid in the meantime; leave it alone.
				return nil
			}

			if err := tx.Model(&models.Listing{}).
				Where("id = ? AND status = ?", transaction.ListingID, models.ListingStatusSold).
				Update("status", models.ListingStatusActive).Error; err != nil {
				return err
			}

			released++
			return nil
		})
		if err != nil {
			logrus.WithError(err).WithField("transaction_id", transaction.ID).Error("Failed to release abandoned listing")
		}
	}

	return released, nil
}

// AutoCompleteTransactions treats buyer silence after delivery as acceptance.
func (s *SchedulerService) AutoCompleteTransactions() (int, error) {
	cutoff := time.Now().Add(-s.config.Escrow.AutoCompleteAfter)

	result := s.db.Model(&models.Transaction{}).
		Where("status = ? AND created_at < ?", models.TransactionStatusProcessing, cutoff).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusCompleted,
			"completed_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to auto-complete transactions: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// DisburseTransactions pays out sellers for completed escrows. The disbursed
// check happens inside the same update predicate, so a retry after a partial
// failure cannot double-pay.
func (s *SchedulerService) DisburseTransactions() (int, error) {
	var eligible []models.Transaction
	if err := s.db.
		Where("status = ? AND disbursed_at IS NULL", models.TransactionStatusCompleted).
		Where("id NOT IN (?)", s.db.Model(&models.Dispute{}).
			Select("transaction_id").
			Where("status IN ?", []models.DisputeStatus{models.DisputeStatusOpen, models.DisputeStatusInReview})).
		Find(&eligible).Error; err != nil {
		return 0, fmt.Errorf("failed to query disbursable transactions: %w", err)
	}

	disbursed := 0
	for i := range eligible {
		transaction := &eligible[i]

		reference, err := utils.GeneratePayoutReference()
		if err != nil {
			return disbursed, fmt.Errorf("failed to generate payout reference: %w", err)
		}

		result := s.db.Model(&models.Transaction{}).
			Where("id = ? AND disbursed_at IS NULL", transaction.ID).
			Updates(map[string]interface{}{
				"disbursed_at":           time.Now(),
				"disbursement_reference": reference,
			})
		if result.Error != nil {
			logrus.WithError(result.Error).WithField("transaction_id", transaction.ID).Error("Disbursement failed")
			continue
		}
		if result.RowsAffected > 0 {
			disbursed++
			logrus.WithFields(logrus.Fields{
				"transaction_id": transaction.ID,
				"seller_id":      transaction.SellerID,
				"amount":         transaction.SellerReceived,
				"reference":      reference,
			}).Info("Seller payout recorded")
		}
	}

	return disbursed, nil
}

// CleanupCredentialAccess purges access records one hour after first access
// and clears the expiry stamp from the transaction. Bounds how long sealed
// credentials are retrievable at all.
func (s *SchedulerService) CleanupCredentialAccess() (int, error) {
	cutoff := time.Now().Add(-s.config.Escrow.CredentialRetention)

	var stale []models.CredentialAccess
	if err := s.db.Where("accessed_at < ?", cutoff).Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("failed to query stale credential access: %w", err)
	}

	cleaned := 0
	for i := range stale {
		access := &stale[i]

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Unscoped().Delete(&models.CredentialAccess{}, access.ID).Error; err != nil {
				return err
			}
			return tx.Model(&models.Transaction{}).
				Where("id = ?", access.TransactionID).
				Update("credentials_expires_at", nil).Error
		})
		if err != nil {
			logrus.WithError(err).WithField("transaction_id", access.TransactionID).Error("Credential cleanup failed")
			continue
		}
		cleaned++
	}

	return cleaned, nil
}

// CleanupIdempotencyRecords drops replay records past their TTL.
func (s *SchedulerService) CleanupIdempotencyRecords() (int, error) {
	result := s.db.Unscoped().
		Where("expires_at < ?", time.Now()).
		Delete(&models.IdempotencyRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clean idempotency records: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}
