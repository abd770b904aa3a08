// internal/services/credential_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

// CredentialService time-boxes the one-time disclosure of purchased account
// credentials. Credentials live sealed on the listing and are decrypted only
// inside Fetch.
type CredentialService struct {
	db     *gorm.DB
	config *config.Config
}

type CredentialDisclosure struct {
	AccountIdentifier string    `json:"account_identifier"`
	Credentials       string    `json:"credentials"`
	ExpiresAt         time.Time `json:"expires_at"`
	MinutesRemaining  int       `json:"minutes_remaining"`
	Warning           string    `json:"warning,omitempty"`
}

const firstAccessWarning = "These credentials are shown for a limited time and will not be retrievable after the window expires. Save them now."

func NewCredentialService(db *gorm.DB, cfg *config.Config) *CredentialService {
	return &CredentialService{db: db, config: cfg}
}

// Fetch returns the credentials for a completed purchase. The first fetch
// opens the disclosure window; re-access within the window returns the same
// data without resetting the clock. The boundary is strict: exactly at
// expiry the window is already closed.
func (s *CredentialService) Fetch(transactionID, buyerID uuid.UUID) (*CredentialDisclosure, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Listing").First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if transaction.BuyerID != buyerID {
		return nil, apperror.ErrTransactionNotFound
	}

	if transaction.Status != models.TransactionStatusCompleted {
		return nil, apperror.ErrCredentialsNotReady
	}

	now := time.Now()

	var access models.CredentialAccess
	err := s.db.Where("transaction_id = ?", transactionID).First(&access).Error
	switch {
	case err == nil:
		if access.Expired(now) {
			return nil, apperror.ErrCredentialsExpired
		}
		return s.disclose(&transaction, access.ExpiresAt, now, false)

	case errors.Is(err, gorm.ErrRecordNotFound):
		// First access: open the window and stamp the transaction.
		expiresAt := now.Add(s.config.Escrow.CredentialWindow)
		access = models.CredentialAccess{
			TransactionID: transactionID,
			BuyerID:       buyerID,
			AccessedAt:    now,
			ExpiresAt:     expiresAt,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&access).Error; err != nil {
				return fmt.Errorf("failed to create access record: %w", err)
			}
			updates := map[string]interface{}{
				"credentials_first_accessed_at": now,
				"credentials_expires_at":        expiresAt,
			}
			return tx.Model(&transaction).Updates(updates).Error
		})
		if err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"transaction_id": transactionID,
			"buyer_id":       buyerID,
			"expires_at":     expiresAt,
		}).Info("Credential disclosure window opened")

		return s.disclose(&transaction, expiresAt, now, true)

	default:
		return nil, fmt.Errorf("database error: %w", err)
	}
}

func (s *CredentialService) disclose(transaction *models.Transaction, expiresAt, now time.Time, first bool) (*CredentialDisclosure, error) {
	plaintext, err := utils.OpenCredentials(s.config.Escrow.CredentialSealKey, transaction.Listing.SealedCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to unseal credentials: %w", err)
	}

	disclosure := &CredentialDisclosure{
		AccountIdentifier: transaction.Listing.AccountIdentifier,
		Credentials:       plaintext,
		ExpiresAt:         expiresAt,
		MinutesRemaining:  MinutesRemaining(expiresAt, now),
	}
	if first {
		disclosure.Warning = firstAccessWarning
	}

	return disclosure, nil
}

// MinutesRemaining rounds the time left in a window up to whole minutes,
// never below zero.
func MinutesRemaining(expiresAt, now time.Time) int {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return minutes
}
