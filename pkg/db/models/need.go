package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
)

// Need is a published funding request. AmountRaised accumulates confirmed
// and unconfirmed gifts; it never exceeds what donors actually paid.
type Need struct {
	ID               int64              `gorm:"column:id;primaryKey;autoIncrement"`
	Title            string             `gorm:"column:title;not null"`
	Summary          string             `gorm:"column:summary;not null"`
	Description      string             `gorm:"column:description;not null"`
	Category         enums.NeedCategory `gorm:"column:category;type:text;not null;default:'other'"`
	Status           enums.NeedStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	AmountNeeded     decimal.Decimal    `gorm:"column:amount_needed;type:numeric(12,2);not null"`
	AmountRaised     decimal.Decimal    `gorm:"column:amount_raised;type:numeric(12,2);not null;default:0"`
	BeneficiaryName  string             `gorm:"column:beneficiary_name;not null"`
	BeneficiaryEmail string             `gorm:"column:beneficiary_email;not null"`
	City             *string            `gorm:"column:city"`
	Region           *string            `gorm:"column:region"`

	// Payment routing: donors pay the gift offsite, so approved needs carry
	// where that money should actually go.
	PayTo                     *string `gorm:"column:pay_to"`
	InstitutionName           *string `gorm:"column:institution_name"`
	InstitutionType           *string `gorm:"column:institution_type"`
	InstitutionPaymentLink    *string `gorm:"column:institution_payment_link"`
	PreferDirectToInstitution bool    `gorm:"column:prefer_direct_to_institution;not null;default:false"`

	VerificationLevel enums.VerificationLevel `gorm:"column:verification_level;type:text;not null;default:'basic_contact_verified'"`
	VerificationNote  *string                 `gorm:"column:verification_note"`

	ReviewedBy      *string    `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	Photos  []NeedPhoto  `gorm:"foreignKey:NeedID;constraint:OnDelete:CASCADE"`
	Updates []NeedUpdate `gorm:"foreignKey:NeedID;constraint:OnDelete:CASCADE"`
}

func (Need) TableName() string { return "needs" }

// Remaining returns the unfunded balance, floored at zero.
func (n Need) Remaining() decimal.Decimal {
	remaining := n.AmountNeeded.Sub(n.AmountRaised)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsFullyFunded reports whether raised gifts have met the goal. Needs without
// a positive goal are never considered funded.
func (n Need) IsFullyFunded() bool {
	return n.AmountNeeded.IsPositive() && n.AmountRaised.GreaterThanOrEqual(n.AmountNeeded)
}

// PercentFunded returns funding progress as a 0..100 integer, capped at 100.
func (n Need) PercentFunded() int {
	if !n.AmountNeeded.IsPositive() {
		return 0
	}
	pct := n.AmountRaised.Div(n.AmountNeeded).Mul(decimal.NewFromInt(100))
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		return 100
	}
	return int(pct.IntPart())
}
