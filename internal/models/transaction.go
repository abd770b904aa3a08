// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Transaction struct {
	BaseModel
	BuyerID   uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID  uuid.UUID `json:"seller_id" gorm:"type:uuid;not null;index"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;index"`

	// Fee breakdown, immutable once computed. All amounts are in minor
	// currency units.
	ItemPrice          int64   `json:"item_price" gorm:"not null"`
	PlatformFeePercent float64 `json:"platform_fee_percent" gorm:"not null"`
	PlatformFeeAmount  int64   `json:"platform_fee_amount" gorm:"not null"`
	DisbursementFee    int64   `json:"disbursement_fee" gorm:"not null"`
	TotalBuyerPaid     int64   `json:"total_buyer_paid" gorm:"not null"`
	SellerReceived     int64   `json:"seller_received" gorm:"not null"`

	PaymentReference string            `json:"payment_reference" gorm:"size:255;index"`
	PaymentURL       string            `json:"payment_url" gorm:"size:512"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus    PaymentStatus     `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`

	PaymentExpiresAt           *time.Time `json:"payment_expires_at"`
	CredentialsFirstAccessedAt *time.Time `json:"credentials_first_accessed_at"`
	CredentialsExpiresAt       *time.Time `json:"credentials_expires_at"`
	CompletedAt                *time.Time `json:"completed_at"`
	DisbursedAt                *time.Time `json:"disbursed_at"`
	DisbursementReference      string     `json:"disbursement_reference,omitempty" gorm:"size:255"`

	// Relationships
	Buyer   User    `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller  User    `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Listing Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
}

// Terminal reports whether the escrow can no longer change state.
func (t *Transaction) Terminal() bool {
	switch t.Status {
	case TransactionStatusRefunded, TransactionStatusCancelled:
		return true
	}
	return false
}

type CredentialAccess struct {
	BaseModel
	TransactionID uuid.UUID `json:"transaction_id" gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID       uuid.UUID `json:"buyer_id" gorm:"type:uuid;not null;index"`
	AccessedAt    time.Time `json:"accessed_at" gorm:"not null"`
	ExpiresAt     time.Time `json:"expires_at" gorm:"not null;index"`
}

func (ca *CredentialAccess) Expired(now time.Time) bool {
	return !now.Before(ca.ExpiresAt)
}
