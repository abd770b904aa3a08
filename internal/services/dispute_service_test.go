// internal/services/dispute_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akunbay/akunbay-backend/internal/models"
)

func TestComputeRefundFull(t *testing.T) {
	amounts := ComputeRefund(100_000, 3_000, 100)

	assert.Equal(t, int64(100_000), amounts.BuyerRefund)
	assert.Equal(t, int64(97_000), amounts.SellerRefund)
}

func TestComputeRefundPartial(t *testing.T) {
	// Half the payment goes back to the buyer; the seller's half is net of
	// the platform fee, which the platform keeps either way.
	amounts := ComputeRefund(100_000, 3_000, 50)

	assert.Equal(t, int64(50_000), amounts.BuyerRefund)
	assert.Equal(t, int64(48_500), amounts.SellerRefund)
}

func TestComputeRefundZeroPercent(t *testing.T) {
	amounts := ComputeRefund(100_000, 3_000, 0)

	assert.Zero(t, amounts.BuyerRefund)
	assert.Zero(t, amounts.SellerRefund)
}

func TestComputeRefundRounding(t *testing.T) {
	// 33% of 1,001 is 330.33, rounds to 330.
	amounts := ComputeRefund(1_001, 0, 33)
	assert.Equal(t, int64(330), amounts.BuyerRefund)

	// 50% of 1,001 is 500.5, rounds to 501.
	amounts = ComputeRefund(1_001, 0, 50)
	assert.Equal(t, int64(501), amounts.BuyerRefund)
}

func TestResolutionPercentage(t *testing.T) {
	cases := []struct {
		resolution models.DisputeResolution
		requested  int
		want       int
	}{
		{models.DisputeResolutionRefundBuyer, 0, 100},
		{models.DisputeResolutionAutoResolved, 0, 100},
		{models.DisputeResolutionPartialRefund, 40, 40},
		{models.DisputeResolutionInFavorSeller, 70, 0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, resolutionPercentage(tc.resolution, tc.requested),
			"resolution %s", tc.resolution)
	}
}
