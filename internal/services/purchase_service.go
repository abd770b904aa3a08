// internal/services/purchase_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/payment"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

type PurchaseService struct {
	db                  *gorm.DB
	config              *config.Config
	feeCalculator       *FeeCalculator
	provider            payment.Provider
	notificationService *NotificationService
}

type PurchaseResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	PaymentURL    string    `json:"payment_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}

func NewPurchaseService(db *gorm.DB, cfg *config.Config, feeCalculator *FeeCalculator,
	provider payment.Provider, notificationService *NotificationService) *PurchaseService {
	return &PurchaseService{
		db:                  db,
		config:              cfg,
		feeCalculator:       feeCalculator,
		provider:            provider,
		notificationService: notificationService,
	}
}

// CreatePurchase reserves a listing and opens an escrow transaction. The
// listing row is locked for the whole unit of work: of all concurrent buyers
// exactly one passes the availability check, the rest fail NotAvailable. If
// the payment provider call fails, everything rolls back and the listing
// stays active.
func (s *PurchaseService) CreatePurchase(ctx context.Context, buyerID, listingID uuid.UUID) (*PurchaseResult, error) {
	var transaction *models.Transaction
	var listingTitle string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock and get listing
		var listing models.Listing
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&listing, listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrListingNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !listing.Purchasable() {
			return apperror.ErrListingNotAvailable
		}

		if listing.SellerID == buyerID {
			return apperror.ErrSelfPurchase
		}

		var buyer models.User
		if err := tx.First(&buyer, buyerID).Error; err != nil {
			return fmt.Errorf("buyer not found: %w", err)
		}

		fees, err := s.feeCalculator.Calculate(listing.Price)
		if err != nil {
			return err
		}

		transaction = &models.Transaction{
			BuyerID:            buyerID,
			SellerID:           listing.SellerID,
			ListingID:          listing.ID,
			ItemPrice:          fees.ItemPrice,
			PlatformFeePercent: fees.PlatformFeePercent,
			PlatformFeeAmount:  fees.PlatformFeeAmount,
			DisbursementFee:    fees.DisbursementFee,
			TotalBuyerPaid:     fees.TotalBuyerPaid,
			SellerReceived:     fees.SellerReceived,
			Status:             models.TransactionStatusPending,
			PaymentStatus:      models.PaymentStatusPending,
		}

		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		// Mark listing sold so a second buyer cannot pass the status check
		// even after this lock is released.
		if err := tx.Model(&listing).Update("status", models.ListingStatusSold).Error; err != nil {
			return fmt.Errorf("failed to reserve listing: %w", err)
		}

		invoice, err := s.provider.CreateInvoice(ctx, &payment.CreateInvoiceRequest{
			ExternalID:  transaction.ID.String(),
			Amount:      fees.TotalBuyerPaid,
			PayerEmail:  buyer.Email,
			Description: fmt.Sprintf("Escrow purchase: %s", listing.Title),
			ExpiresIn:   s.config.Escrow.PaymentWindow,
		})
		if err != nil {
			// Rolls back the whole unit of work: no transaction row, listing
			// stays active.
			return fmt.Errorf("payment provider error: %w", err)
		}

		expiresAt := time.Now().Add(s.config.Escrow.PaymentWindow)
		if !invoice.ExpiresAt.IsZero() {
			expiresAt = invoice.ExpiresAt
		}

		updates := map[string]interface{}{
			"payment_reference":  invoice.ID,
			"payment_url":        invoice.PaymentURL,
			"payment_expires_at": expiresAt,
		}
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to persist payment reference: %w", err)
		}

		transaction.PaymentReference = invoice.ID
		transaction.PaymentURL = invoice.PaymentURL
		transaction.PaymentExpiresAt = &expiresAt
		listingTitle = listing.Title

		return nil
	})

	if err != nil {
		return nil, err
	}

	// Post-commit hook: best-effort, cannot affect the committed escrow.
	s.notificationService.NotifySale(transaction.SellerID, transaction.ID, listingTitle)

	logrus.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"listing_id":     listingID,
		"buyer_id":       buyerID,
		"total":          transaction.TotalBuyerPaid,
	}).Info("Purchase created")

	return &PurchaseResult{
		TransactionID: transaction.ID,
		PaymentURL:    transaction.PaymentURL,
		ExpiresAt:     *transaction.PaymentExpiresAt,
	}, nil
}

// GetTransaction returns a transaction visible to one of its participants.
func (s *PurchaseService) GetTransaction(transactionID, userID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Listing").First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if transaction.BuyerID != userID && transaction.SellerID != userID {
		return nil, apperror.ErrTransactionNotFound
	}

	return &transaction, nil
}

// GetTransactionHistory lists transactions where the user is buyer or seller.
func (s *PurchaseService) GetTransactionHistory(userID uuid.UUID, params utils.PaginationParams) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Preload("Listing")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "item_price", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}
