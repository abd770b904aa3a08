// internal/models/listing.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Listing struct {
	BaseModel
	SellerID    uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"size:100;index"`
	Price       int64          `json:"price" gorm:"not null"`
	Images      pq.StringArray `json:"images" gorm:"type:text[]"`
	Status      ListingStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ExpiresAt   *time.Time     `json:"expires_at"`

	// Account identity shown to the buyer before purchase. The secret
	// credentials are sealed at rest and never serialized.
	AccountIdentifier string `json:"account_identifier" gorm:"size:255"`
	SealedCredentials []byte `json:"-" gorm:"type:bytea"`

	// Relationships
	Seller       User          `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:ListingID"`
}

func (l *Listing) Purchasable() bool {
	return l.Status == ListingStatusActive
}
