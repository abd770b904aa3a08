// internal/services/dispute_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

const maxEvidenceURLs = 5

type DisputeService struct {
	db                  *gorm.DB
	config              *config.Config
	notificationService *NotificationService
}

type CreateDisputeRequest struct {
	TransactionID uuid.UUID            `json:"transaction_id" validate:"required"`
	Reason        models.DisputeReason `json:"reason" validate:"required,oneof=invalid_credentials account_recovered not_as_described other"`
	Description   string               `json:"description" validate:"required,min=10"`
	EvidenceURLs  []string             `json:"evidence_urls,omitempty" validate:"omitempty,max=5,dive,url"`
}

type AddMessageRequest struct {
	Message     string   `json:"message" validate:"required,min=1,max=5000"`
	Attachments []string `json:"attachments,omitempty" validate:"omitempty,max=5,dive,url"`
}

type ResolveDisputeRequest struct {
	Resolution       models.DisputeResolution `json:"resolution" validate:"required,oneof=refund_buyer in_favor_seller partial_refund"`
	RefundPercentage int                      `json:"refund_percentage,omitempty" validate:"omitempty,min=1,max=100"`
	Notes            string                   `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// RefundAmounts is the pair of computed payouts a resolution implies.
type RefundAmounts struct {
	BuyerRefund  int64
	SellerRefund int64
}

func NewDisputeService(db *gorm.DB, cfg *config.Config, notificationService *NotificationService) *DisputeService {
	return &DisputeService{
		db:                  db,
		config:              cfg,
		notificationService: notificationService,
	}
}

// ComputeRefund derives refund amounts from a transaction's totals. The
// seller side is computed net of the platform fee, which the platform keeps.
func ComputeRefund(totalBuyerPaid, platformFeeAmount int64, percentage int) RefundAmounts {
	pct := float64(percentage)
	return RefundAmounts{
		BuyerRefund:  int64(math.Round(float64(totalBuyerPaid) * pct / 100)),
		SellerRefund: int64(math.Round(float64(totalBuyerPaid-platformFeeAmount) * pct / 100)),
	}
}

func resolutionPercentage(resolution models.DisputeResolution, requested int) int {
	switch resolution {
	case models.DisputeResolutionRefundBuyer, models.DisputeResolutionAutoResolved:
		return 100
	case models.DisputeResolutionPartialRefund:
		return requested
	default:
		return 0
	}
}

func (s *DisputeService) Create(buyerID uuid.UUID, req *CreateDisputeRequest) (*models.Dispute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "invalid dispute request")
	}
	if len(req.EvidenceURLs) > maxEvidenceURLs {
		return nil, apperror.New(apperror.ErrCodeValidation, "too many evidence URLs")
	}

	var dispute *models.Dispute

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var transaction models.Transaction
		if err := tx.First(&transaction, req.TransactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrTransactionNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if transaction.BuyerID != buyerID {
			return apperror.ErrTransactionNotFound
		}

		var existing int64
		if err := tx.Model(&models.Dispute{}).
			Where("transaction_id = ? AND status != ?", req.TransactionID, models.DisputeStatusClosed).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if existing > 0 {
			return apperror.ErrDisputeExists
		}

		dispute = &models.Dispute{
			TransactionID: transaction.ID,
			BuyerID:       transaction.BuyerID,
			SellerID:      transaction.SellerID,
			Reason:        req.Reason,
			Description:   req.Description,
			EvidenceURLs:  req.EvidenceURLs,
			Status:        models.DisputeStatusOpen,
			AutoResolveAt: time.Now().Add(s.config.Escrow.DisputeAutoResolveIn),
		}

		if err := tx.Create(dispute).Error; err != nil {
			return fmt.Errorf("failed to create dispute: %w", err)
		}

		// Pending, paid and processing escrows move to disputed; a completed
		// transaction keeps its status while the dispute runs.
		switch transaction.Status {
		case models.TransactionStatusPending, models.TransactionStatusPaid, models.TransactionStatusProcessing:
			if err := tx.Model(&transaction).
				Update("status", models.TransactionStatusDisputed).Error; err != nil {
				return fmt.Errorf("failed to mark transaction disputed: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.notificationService.NotifyDisputeOpened(dispute.SellerID, dispute.ID)

	logrus.WithFields(logrus.Fields{
		"dispute_id":     dispute.ID,
		"transaction_id": dispute.TransactionID,
		"reason":         dispute.Reason,
	}).Info("Dispute opened")

	return dispute, nil
}

func (s *DisputeService) AddMessage(disputeID, userID uuid.UUID, req *AddMessageRequest) (*models.DisputeMessage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "invalid message")
	}

	var dispute models.Dispute
	if err := s.db.First(&dispute, disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !dispute.Participant(userID) {
		return nil, apperror.ErrNotParticipant
	}

	if dispute.Status == models.DisputeStatusClosed || dispute.Status == models.DisputeStatusAutoResolved {
		return nil, apperror.ErrDisputeClosed
	}

	message := &models.DisputeMessage{
		DisputeID:   disputeID,
		SenderID:    userID,
		Message:     req.Message,
		Attachments: req.Attachments,
	}

	if err := s.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create dispute message: %w", err)
	}

	return message, nil
}

func (s *DisputeService) Resolve(disputeID, adminID uuid.UUID, req *ResolveDisputeRequest) (*models.Dispute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "invalid resolution request")
	}

	if req.Resolution == models.DisputeResolutionPartialRefund && req.RefundPercentage <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "partial refund requires a refund percentage")
	}

	var dispute models.Dispute

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Transaction").First(&dispute, disputeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrDisputeNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !dispute.Open() {
			return apperror.ErrDisputeResolved
		}

		pct := resolutionPercentage(req.Resolution, req.RefundPercentage)
		amounts := ComputeRefund(dispute.Transaction.TotalBuyerPaid, dispute.Transaction.PlatformFeeAmount, pct)

		now := time.Now()
		updates := map[string]interface{}{
			"status":            models.DisputeStatusResolved,
			"resolution":        req.Resolution,
			"refund_percentage": pct,
			"resolution_notes":  req.Notes,
			"resolved_by":       adminID,
			"resolved_at":       now,
		}
		if err := tx.Model(&dispute).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to resolve dispute: %w", err)
		}

		if amounts.BuyerRefund > 0 {
			refund := &models.Refund{
				DisputeID:    dispute.ID,
				BuyerID:      dispute.BuyerID,
				SellerID:     dispute.SellerID,
				BuyerRefund:  amounts.BuyerRefund,
				SellerRefund: amounts.SellerRefund,
				Status:       models.RefundStatusPending,
			}
			if err := tx.Create(refund).Error; err != nil {
				return fmt.Errorf("failed to create refund: %w", err)
			}

			if err := tx.Model(&models.Transaction{}).
				Where("id = ?", dispute.TransactionID).
				Update("status", models.TransactionStatusRefunded).Error; err != nil {
				return fmt.Errorf("failed to mark transaction refunded: %w", err)
			}
		} else if dispute.Transaction.Status == models.TransactionStatusDisputed {
			// Seller won: release the escrow back onto the normal path.
			if err := tx.Model(&models.Transaction{}).
				Where("id = ?", dispute.TransactionID).
				Update("status", models.TransactionStatusCompleted).Error; err != nil {
				return fmt.Errorf("failed to restore transaction: %w", err)
			}
		}

		dispute.Status = models.DisputeStatusResolved
		dispute.Resolution = req.Resolution
		dispute.RefundPercentage = pct
		dispute.ResolvedAt = &now

		return nil
	})

	if err != nil {
		return nil, err
	}

	s.notificationService.NotifyDisputeResolved(dispute.BuyerID, dispute.SellerID, dispute.ID, dispute.Resolution)

	logrus.WithFields(logrus.Fields{
		"dispute_id": dispute.ID,
		"resolution": dispute.Resolution,
		"percentage": dispute.RefundPercentage,
	}).Info("Dispute resolved")

	return &dispute, nil
}

// AutoResolveExpired closes every dispute past its deadline with a full buyer
// refund. Default-to-buyer is the policy when no adjudication happened in 30
// days. Safe to re-run: resolved disputes no longer match the predicate.
func (s *DisputeService) AutoResolveExpired() (int, error) {
	var expired []models.Dispute
	if err := s.db.Preload("Transaction").
		Where("status IN ? AND auto_resolve_at <= ?",
			[]models.DisputeStatus{models.DisputeStatusOpen, models.DisputeStatusInReview}, time.Now()).
		Find(&expired).Error; err != nil {
		return 0, fmt.Errorf("failed to query expired disputes: %w", err)
	}

	resolved := 0
	for i := range expired {
		dispute := &expired[i]

		err := s.db.Transaction(func(tx *gorm.DB) error {
			amounts := ComputeRefund(dispute.Transaction.TotalBuyerPaid, dispute.Transaction.PlatformFeeAmount, 100)

			now := time.Now()
			result := tx.Model(&models.Dispute{}).
				Where("id = ? AND status IN ?", dispute.ID,
					[]models.DisputeStatus{models.DisputeStatusOpen, models.DisputeStatusInReview}).
				Updates(map[string]interface{}{
					"status":            models.DisputeStatusAutoResolved,
					"resolution":        models.DisputeResolutionAutoResolved,
					"refund_percentage": 100,
					"resolved_at":       now,
				})
			if result.Error != nil {
				return fmt.Errorf("failed to auto-resolve dispute: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				// A concurrent run or an admin got there first.
				return nil
			}

			refund := &models.Refund{
				DisputeID:    dispute.ID,
				BuyerID:      dispute.BuyerID,
				SellerID:     dispute.SellerID,
				BuyerRefund:  amounts.BuyerRefund,
				SellerRefund: amounts.SellerRefund,
				Status:       models.RefundStatusPending,
			}
			if err := tx.Create(refund).Error; err != nil {
				return fmt.Errorf("failed to create refund: %w", err)
			}

			if err := tx.Model(&models.Transaction{}).
				Where("id = ?", dispute.TransactionID).
				Update("status", models.TransactionStatusRefunded).Error; err != nil {
				return fmt.Errorf("failed to mark transaction refunded: %w", err)
			}

			resolved++
			return nil
		})

		if err != nil {
			logrus.WithError(err).WithField("dispute_id", dispute.ID).Error("Auto-resolve failed")
			continue
		}

		s.notificationService.NotifyDisputeResolved(dispute.BuyerID, dispute.SellerID, dispute.ID, models.DisputeResolutionAutoResolved)
	}

	return resolved, nil
}

// Get returns a dispute with its message thread for a participant or admin.
func (s *DisputeService) Get(disputeID, userID uuid.UUID, isAdmin bool) (*models.Dispute, error) {
	var dispute models.Dispute
	if err := s.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Preload("Refund").First(&dispute, disputeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !isAdmin && !dispute.Participant(userID) {
		return nil, apperror.ErrNotParticipant
	}

	return &dispute, nil
}

// ListForUser returns disputes where the user is buyer or seller.
func (s *DisputeService) ListForUser(userID uuid.UUID, params utils.PaginationParams) ([]models.Dispute, int64, error) {
	query := s.db.Model(&models.Dispute{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count disputes: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "status"})
	query = utils.ApplyPagination(query, params)

	var disputes []models.Dispute
	if err := query.Find(&disputes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch disputes: %w", err)
	}

	return disputes, total, nil
}
