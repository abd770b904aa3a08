// internal/models/transaction_test.go
package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTransactionTerminal(t *testing.T) {
	terminal := map[TransactionStatus]bool{
		TransactionStatusPending:    false,
		TransactionStatusPaid:       false,
		TransactionStatusProcessing: false,
		TransactionStatusCompleted:  false,
		TransactionStatusDisputed:   false,
		TransactionStatusRefunded:   true,
		TransactionStatusCancelled:  true,
	}

	for status, want := range terminal {
		tx := Transaction{Status: status}
		assert.Equal(t, want, tx.Terminal(), "status %s", status)
	}
}

func TestCredentialAccessExpiryBoundary(t *testing.T) {
	expiresAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	access := CredentialAccess{ExpiresAt: expiresAt}

	assert.False(t, access.Expired(expiresAt.Add(-time.Nanosecond)))
	// Exactly at expiry the window is closed.
	assert.True(t, access.Expired(expiresAt))
	assert.True(t, access.Expired(expiresAt.Add(time.Second)))
}

func TestDisputeOpen(t *testing.T) {
	open := map[DisputeStatus]bool{
		DisputeStatusOpen:         true,
		DisputeStatusInReview:     true,
		DisputeStatusResolved:     false,
		DisputeStatusAutoResolved: false,
		DisputeStatusClosed:       false,
	}

	for status, want := range open {
		d := Dispute{Status: status}
		assert.Equal(t, want, d.Open(), "status %s", status)
	}
}

func TestDisputeParticipant(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	d := Dispute{BuyerID: buyer, SellerID: seller}

	assert.True(t, d.Participant(buyer))
	assert.True(t, d.Participant(seller))
	assert.False(t, d.Participant(uuid.New()))
}

func TestListingPurchasable(t *testing.T) {
	assert.True(t, (&Listing{Status: ListingStatusActive}).Purchasable())
	assert.False(t, (&Listing{Status: ListingStatusSold}).Purchasable())
	assert.False(t, (&Listing{Status: ListingStatusExpired}).Purchasable())
	assert.False(t, (&Listing{Status: ListingStatusDeleted}).Purchasable())
}
