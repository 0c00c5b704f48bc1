package funding

import (
	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
)

const (
	// TipPercentMin and TipPercentMax bound the platform-support tip. Values
	// outside the range are clamped, never rejected.
	TipPercentMin = 0
	TipPercentMax = 20
)

var (
	// minChargeableFee is the hosted provider's minimum chargeable amount.
	// Fees between zero and this floor are raised to it rather than dropped.
	minChargeableFee = decimal.RequireFromString("0.50")

	msgAlreadyFunded  = "need is already fully funded"
	msgFeeNotPositive = "platform support must be greater than $0.00"
)

// Quote is the computed funding offer for one attempt. It is never persisted;
// settlement re-derives everything from the need row and the provider.
type Quote struct {
	NeedID     int64           `json:"need_id"`
	Remaining  decimal.Decimal `json:"remaining"`
	CappedGift decimal.Decimal `json:"capped_gift"`
	Fee        decimal.Decimal `json:"fee"`
	TipPercent int             `json:"tip_percent"`
}

// ClampTipPercent forces the tip into [TipPercentMin, TipPercentMax].
func ClampTipPercent(tipPercent int) int {
	if tipPercent < TipPercentMin {
		return TipPercentMin
	}
	if tipPercent > TipPercentMax {
		return TipPercentMax
	}
	return tipPercent
}

// BuildQuote computes the capped gift and platform-support fee for a need
// snapshot. Pure; no side effects. Rounding is half away from zero at two
// decimal places, matching how amounts are later validated at settlement.
func BuildQuote(need models.Need, requestedGift decimal.Decimal, tipPercent int) (Quote, error) {
	remaining := need.Remaining()
	if !remaining.IsPositive() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, msgAlreadyFunded)
	}

	if requestedGift.IsNegative() {
		requestedGift = decimal.Zero
	}
	cappedGift := requestedGift
	if cappedGift.GreaterThan(remaining) {
		cappedGift = remaining
	}
	cappedGift = cappedGift.Round(2)

	tip := ClampTipPercent(tipPercent)
	fee := cappedGift.Mul(decimal.NewFromInt(int64(tip))).Div(decimal.NewFromInt(100)).Round(2)

	if fee.IsPositive() && fee.LessThan(minChargeableFee) {
		fee = minChargeableFee
	}
	if !fee.IsPositive() {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, msgFeeNotPositive)
	}

	return Quote{
		NeedID:     need.ID,
		Remaining:  remaining,
		CappedGift: cappedGift,
		Fee:        fee,
		TipPercent: tip,
	}, nil
}
