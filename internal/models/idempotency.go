// internal/models/idempotency.go
package models

import (
	"time"
)

// IdempotencyRecord stores the first successful response for a client-supplied
// idempotency key. Retries bearing the same key within the TTL replay the
// recorded status code and body verbatim.
type IdempotencyRecord struct {
	BaseModel
	Scope          string    `json:"-" gorm:"size:255;not null;uniqueIndex:idx_idempotency_scope_key"`
	IdempotencyKey string    `json:"-" gorm:"size:128;not null;uniqueIndex:idx_idempotency_scope_key"`
	ResponseStatus int       `json:"-" gorm:"not null"`
	ResponseBody   []byte    `json:"-" gorm:"type:bytea"`
	ContentType    string    `json:"-" gorm:"size:128"`
	ExpiresAt      time.Time `json:"-" gorm:"not null;index"`
}
