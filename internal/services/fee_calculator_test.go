// internal/services/fee_calculator_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
)

func defaultEscrowConfig() config.EscrowConfig {
	return config.EscrowConfig{
		PlatformFeePercent: 3.0,
		DisbursementFee:    2500,
		GatewayFee:         0,
	}
}

func TestCalculateStandardBreakdown(t *testing.T) {
	calc := NewFeeCalculator(defaultEscrowConfig())

	breakdown, err := calc.Calculate(100_000)
	require.NoError(t, err)

	assert.Equal(t, int64(100_000), breakdown.ItemPrice)
	assert.Equal(t, int64(3_000), breakdown.PlatformFeeAmount)
	assert.Equal(t, int64(2_500), breakdown.DisbursementFee)
	assert.Equal(t, int64(100_000), breakdown.TotalBuyerPaid)
	assert.Equal(t, int64(94_500), breakdown.SellerReceived)
}

func TestCalculateConservation(t *testing.T) {
	calc := NewFeeCalculator(defaultEscrowConfig())

	for _, price := range []int64{1, 999, 100_000, 12_345_678, 1_000_000_000} {
		breakdown, err := calc.Calculate(price)
		require.NoError(t, err)

		// Every unit the buyer pays lands somewhere: seller payout plus the
		// two fees the platform keeps.
		assert.Equal(t, breakdown.ItemPrice,
			breakdown.SellerReceived+breakdown.PlatformFeeAmount+breakdown.DisbursementFee,
			"price %d", price)
	}
}

func TestCalculateRoundsHalfUp(t *testing.T) {
	calc := NewFeeCalculator(defaultEscrowConfig())

	// 3% of 1,050 is 31.5, rounds to 32.
	breakdown, err := calc.Calculate(1_050)
	require.NoError(t, err)
	assert.Equal(t, int64(32), breakdown.PlatformFeeAmount)
}

func TestCalculateGatewayFeePassedToBuyer(t *testing.T) {
	cfg := defaultEscrowConfig()
	cfg.GatewayFee = 1_500
	calc := NewFeeCalculator(cfg)

	breakdown, err := calc.Calculate(100_000)
	require.NoError(t, err)

	assert.Equal(t, int64(101_500), breakdown.TotalBuyerPaid)
	// Gateway fee does not touch the seller side.
	assert.Equal(t, int64(94_500), breakdown.SellerReceived)
}

func TestCalculateRejectsNonPositivePrice(t *testing.T) {
	calc := NewFeeCalculator(defaultEscrowConfig())

	for _, price := range []int64{0, -1, -100_000} {
		_, err := calc.Calculate(price)
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.ErrCodeInvalidAmount), "price %d", price)
	}
}
