// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusSold    ListingStatus = "sold"
	ListingStatusExpired ListingStatus = "expired"
	ListingStatusDeleted ListingStatus = "deleted"
)

type TransactionStatus string

const (
	TransactionStatusPending    TransactionStatus = "pending"
	TransactionStatusPaid       TransactionStatus = "paid"
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusDisputed   TransactionStatus = "disputed"
	TransactionStatusRefunded   TransactionStatus = "refunded"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

type DisputeStatus string

const (
	DisputeStatusOpen         DisputeStatus = "open"
	DisputeStatusInReview     DisputeStatus = "in_review"
	DisputeStatusResolved     DisputeStatus = "resolved"
	DisputeStatusAutoResolved DisputeStatus = "auto_resolved"
	DisputeStatusClosed       DisputeStatus = "closed"
)

type DisputeReason string

const (
	DisputeReasonInvalidCredentials DisputeReason = "invalid_credentials"
	DisputeReasonAccountRecovered   DisputeReason = "account_recovered"
	DisputeReasonNotAsDescribed     DisputeReason = "not_as_described"
	DisputeReasonOther              DisputeReason = "other"
)

type DisputeResolution string

const (
	DisputeResolutionRefundBuyer   DisputeResolution = "refund_buyer"
	DisputeResolutionInFavorSeller DisputeResolution = "in_favor_seller"
	DisputeResolutionPartialRefund DisputeResolution = "partial_refund"
	DisputeResolutionAutoResolved  DisputeResolution = "auto_resolved"
)

type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
)
