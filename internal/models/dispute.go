// internal/models/dispute.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Dispute struct {
	BaseModel
	TransactionID uuid.UUID      `json:"transaction_id" gorm:"type:uuid;not null;index"`
	BuyerID       uuid.UUID      `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID      uuid.UUID      `json:"seller_id" gorm:"type:uuid;not null;index"`
	Reason        DisputeReason  `json:"reason" gorm:"type:varchar(50);not null"`
	Description   string         `json:"description" gorm:"type:text;not null"`
	EvidenceURLs  pq.StringArray `json:"evidence_urls" gorm:"type:text[]"`
	Status        DisputeStatus  `json:"status" gorm:"type:varchar(20);default:'open';index"`

	Resolution       DisputeResolution `json:"resolution,omitempty" gorm:"type:varchar(20)"`
	RefundPercentage int               `json:"refund_percentage"`
	ResolutionNotes  string            `json:"resolution_notes,omitempty" gorm:"type:text"`
	ResolvedBy       *uuid.UUID        `json:"resolved_by,omitempty" gorm:"type:uuid"`
	AutoResolveAt    time.Time         `json:"auto_resolve_at" gorm:"not null;index"`
	ResolvedAt       *time.Time        `json:"resolved_at"`

	// Relationships
	Transaction Transaction      `json:"transaction,omitempty" gorm:"foreignKey:TransactionID"`
	Buyer       User             `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller      User             `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
	Messages    []DisputeMessage `json:"messages,omitempty" gorm:"foreignKey:DisputeID"`
	Refund      *Refund          `json:"refund,omitempty" gorm:"foreignKey:DisputeID"`
}

// Open reports whether the dispute still accepts messages and resolution.
func (d *Dispute) Open() bool {
	return d.Status == DisputeStatusOpen || d.Status == DisputeStatusInReview
}

func (d *Dispute) Participant(userID uuid.UUID) bool {
	return d.BuyerID == userID || d.SellerID == userID
}

type DisputeMessage struct {
	BaseModel
	DisputeID   uuid.UUID      `json:"dispute_id" gorm:"type:uuid;not null;index"`
	SenderID    uuid.UUID      `json:"sender_id" gorm:"type:uuid;not null;index"`
	Message     string         `json:"message" gorm:"type:text;not null"`
	Attachments pq.StringArray `json:"attachments" gorm:"type:text[]"`

	Sender User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

type Refund struct {
	BaseModel
	DisputeID    uuid.UUID    `json:"dispute_id" gorm:"type:uuid;not null;uniqueIndex"`
	BuyerID      uuid.UUID    `json:"buyer_id" gorm:"type:uuid;not null;index"`
	SellerID     uuid.UUID    `json:"seller_id" gorm:"type:uuid;not null;index"`
	BuyerRefund  int64        `json:"buyer_refund" gorm:"not null"`
	SellerRefund int64        `json:"seller_refund" gorm:"not null"`
	Status       RefundStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
}
