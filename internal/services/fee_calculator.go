// internal/services/fee_calculator.go
package services

import (
	"math"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/config"
)

// FeeBreakdown is the immutable fee computation attached to a transaction.
// All amounts are minor currency units.
type FeeBreakdown struct {
	ItemPrice          int64   `json:"item_price"`
	PlatformFeePercent float64 `json:"platform_fee_percent"`
	PlatformFeeAmount  int64   `json:"platform_fee_amount"`
	DisbursementFee    int64   `json:"disbursement_fee"`
	GatewayFee         int64   `json:"gateway_fee"`
	TotalBuyerPaid     int64   `json:"total_buyer_paid"`
	SellerReceived     int64   `json:"seller_received"`
}

// FeeCalculator derives the escrow fee breakdown from a listing price. Pure:
// no storage, no side effects.
type FeeCalculator struct {
	platformFeePercent float64
	disbursementFee    int64
	gatewayFee         int64
}

func NewFeeCalculator(cfg config.EscrowConfig) *FeeCalculator {
	return &FeeCalculator{
		platformFeePercent: cfg.PlatformFeePercent,
		disbursementFee:    cfg.DisbursementFee,
		gatewayFee:         cfg.GatewayFee,
	}
}

func (f *FeeCalculator) Calculate(itemPrice int64) (*FeeBreakdown, error) {
	if itemPrice <= 0 {
		return nil, apperror.New(apperror.ErrCodeInvalidAmount, "item price must be positive")
	}

	platformFee := int64(math.Round(float64(itemPrice) * f.platformFeePercent / 100))

	return &FeeBreakdown{
		ItemPrice:          itemPrice,
		PlatformFeePercent: f.platformFeePercent,
		PlatformFeeAmount:  platformFee,
		DisbursementFee:    f.disbursementFee,
		GatewayFee:         f.gatewayFee,
		TotalBuyerPaid:     itemPrice + f.gatewayFee,
		SellerReceived:     itemPrice - platformFee - f.disbursementFee,
	}, nil
}
