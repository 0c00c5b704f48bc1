package funding

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
)

func needWith(goal, raised string) models.Need {
	return models.Need{
		ID:           7,
		AmountNeeded: decimal.RequireFromString(goal),
		AmountRaised: decimal.RequireFromString(raised),
	}
}

func mustQuote(t *testing.T, need models.Need, gift string, tip int) Quote {
	t.Helper()
	quote, err := BuildQuote(need, decimal.RequireFromString(gift), tip)
	if err != nil {
		t.Fatalf("unexpected quote error: %v", err)
	}
	return quote
}

func TestBuildQuoteRejectsFullyFunded(t *testing.T) {
	for _, raised := range []string{"500", "750"} {
		_, err := BuildQuote(needWith("500", raised), decimal.RequireFromString("100"), 10)
		if err == nil {
			t.Fatalf("raised=%s: expected rejection for fully funded need", raised)
		}
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("raised=%s: expected validation code, got %v", raised, err)
		}
	}
}

func TestBuildQuoteNegativeGiftTreatedAsZero(t *testing.T) {
	need := needWith("1000", "400")

	_, errNegative := BuildQuote(need, decimal.RequireFromString("-50"), 10)
	_, errZero := BuildQuote(need, decimal.Zero, 10)

	if errNegative == nil || errZero == nil {
		t.Fatal("zero-fee quotes should be rejected")
	}
	if errNegative.Error() != errZero.Error() {
		t.Fatalf("negative gift should behave like zero: %v vs %v", errNegative, errZero)
	}
}

func TestBuildQuoteClampsTipPercent(t *testing.T) {
	need := needWith("1000", "400")

	over := mustQuote(t, need, "100", 25)
	max := mustQuote(t, need, "100", 20)
	if !over.Fee.Equal(max.Fee) || over.TipPercent != max.TipPercent {
		t.Fatalf("tip=25 should equal tip=20: %+v vs %+v", over, max)
	}

	_, errUnder := BuildQuote(need, decimal.RequireFromString("100"), -5)
	_, errZero := BuildQuote(need, decimal.RequireFromString("100"), 0)
	if errUnder == nil || errZero == nil {
		t.Fatal("clamped-to-zero tips should both be rejected")
	}
}

func TestBuildQuoteGiftCappedAtRemaining(t *testing.T) {
	quote := mustQuote(t, needWith("1000", "400"), "700", 2)
	if !quote.CappedGift.Equal(decimal.RequireFromString("600")) {
		t.Fatalf("expected gift capped at 600, got %s", quote.CappedGift)
	}
	if !quote.Fee.Equal(decimal.RequireFromString("12.00")) {
		t.Fatalf("expected fee 12.00, got %s", quote.Fee)
	}
}

func TestBuildQuoteFeeFloor(t *testing.T) {
	quote := mustQuote(t, needWith("1000", "0"), "10", 1)
	if !quote.Fee.Equal(decimal.RequireFromString("0.50")) {
		t.Fatalf("raw fee 0.10 should floor to 0.50, got %s", quote.Fee)
	}
}

func TestBuildQuoteZeroFeeNeverFloored(t *testing.T) {
	if _, err := BuildQuote(needWith("1000", "0"), decimal.RequireFromString("100"), 0); err == nil {
		t.Fatal("exactly-zero fee must be rejected, not floored")
	}
}

func TestBuildQuoteRoundsHalfAwayFromZero(t *testing.T) {
	// 33.33 * 5% = 1.6665 -> 1.67
	quote := mustQuote(t, needWith("1000", "0"), "33.33", 5)
	if !quote.Fee.Equal(decimal.RequireFromString("1.67")) {
		t.Fatalf("expected fee 1.67, got %s", quote.Fee)
	}
}

func TestClampTipPercent(t *testing.T) {
	cases := map[int]int{-1: 0, 0: 0, 10: 10, 20: 20, 21: 20, 100: 20}
	for in, want := range cases {
		if got := ClampTipPercent(in); got != want {
			t.Fatalf("ClampTipPercent(%d) = %d, want %d", in, got, want)
		}
	}
}
