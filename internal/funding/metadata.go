package funding

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Metadata keys echoed through the hosted checkout session. The provider
// stores them opaquely and reports them back at reconciliation time.
const (
	metaNeedID          = "needId"
	metaGiftAmount      = "giftAmount"
	metaPlatformSupport = "platformSupport"
	metaTipPercent      = "tipPercent"
	metaIsAnonymous     = "isAnonymous"
	metaDonorEmail      = "donorEmail"
)

func encodeCheckoutMetadata(needID int64, quote Quote, donorEmail string, isAnonymous bool) map[string]string {
	anonymous := "0"
	if isAnonymous {
		anonymous = "1"
		donorEmail = ""
	}
	return map[string]string{
		metaNeedID:          strconv.FormatInt(needID, 10),
		metaGiftAmount:      quote.CappedGift.StringFixed(2),
		metaPlatformSupport: quote.Fee.StringFixed(2),
		metaTipPercent:      strconv.Itoa(quote.TipPercent),
		metaIsAnonymous:     anonymous,
		metaDonorEmail:      donorEmail,
	}
}

// metaNeedIDMatches parses the needId metadata entry and compares it against
// the path parameter. Missing or unparseable entries never match.
func metaNeedIDMatches(metadata map[string]string, needID int64) bool {
	raw, ok := metadata[metaNeedID]
	if !ok {
		return false
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return parsed == needID
}

// metaAmount reads a decimal metadata entry, defaulting to zero on missing or
// unparseable values and clamping negatives to zero.
func metaAmount(metadata map[string]string, key string) decimal.Decimal {
	raw, ok := metadata[key]
	if !ok {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func metaTip(metadata map[string]string) int {
	raw, ok := metadata[metaTipPercent]
	if !ok {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return ClampTipPercent(value)
}

func metaAnonymous(metadata map[string]string) bool {
	return metadata[metaIsAnonymous] == "1"
}
