// internal/services/listing_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

type ListingService struct {
	db     *gorm.DB
	config *config.Config
}

func NewListingService(db *gorm.DB, cfg *config.Config) *ListingService {
	return &ListingService{db: db, config: cfg}
}

// ListActive returns the purchasable catalog page. Sold, expired and deleted
// listings never appear here.
func (s *ListingService) ListActive(ctx context.Context, params utils.PaginationParams, category string) ([]models.Listing, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive)

	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "price"})
	query = utils.ApplyPagination(query, params)

	var listings []models.Listing
	if err := query.Preload("Seller").Find(&listings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list listings: %w", err)
	}

	return listings, total, nil
}

// Get returns a single listing by id. Sealed credentials are never serialized
// on the model, so this is safe to hand to any caller.
func (s *ListingService) Get(ctx context.Context, listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).
		Preload("Seller").
		First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	return &listing, nil
}

type CreateListingRequest struct {
	Title             string   `json:"title" binding:"required,min=3,max=200"`
	Description       string   `json:"description" binding:"max=5000"`
	Category          string   `json:"category" binding:"required,max=100"`
	Price             int64    `json:"price" binding:"required,gt=0"`
	AccountIdentifier string   `json:"account_identifier" binding:"required,max=255"`
	Credentials       string   `json:"credentials" binding:"required"`
	Images            []string `json:"images" binding:"max=10,dive,url"`
}

// Create stores a new listing with the account credentials sealed at rest.
// Plaintext credentials exist only for the duration of this call.
func (s *ListingService) Create(ctx context.Context, sellerID uuid.UUID, req *CreateListingRequest) (*models.Listing, error) {
	sealed, err := utils.SealCredentials(s.config.Escrow.CredentialSealKey, req.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to seal credentials: %w", err)
	}

	expiresAt := time.Now().Add(s.config.Escrow.ListingTTL)
	listing := &models.Listing{
		SellerID:          sellerID,
		Title:             req.Title,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		AccountIdentifier: req.AccountIdentifier,
		SealedCredentials: sealed,
		Images:            req.Images,
		Status:            models.ListingStatusActive,
		ExpiresAt:         &expiresAt,
	}

	if err := s.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	return listing, nil
}

// Delete soft-removes a listing. Only the owning seller may delete, and only
// while the listing is still on sale.
func (s *ListingService) Delete(ctx context.Context, sellerID, listingID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			First(&listing, "id = ?", listingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.ErrListingNotFound
			}
			return fmt.Errorf("failed to lock listing: %w", err)
		}

		if listing.SellerID != sellerID {
			return apperror.ErrListingNotFound
		}
		if listing.Status != models.ListingStatusActive && listing.Status != models.ListingStatusExpired {
			return apperror.New(apperror.ErrCodeConflict, "listing has a transaction in flight")
		}

		return tx.Model(&listing).Update("status", models.ListingStatusDeleted).Error
	})
}
