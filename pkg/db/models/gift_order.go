package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
)

// GiftOrder records one settled hosted-checkout gift. StripeSessionID carries
// a unique index so a session can never be recorded twice; the reconciler
// relies on the constraint name when racing duplicate confirmations.
type GiftOrder struct {
	ID              int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	NeedID          int64                   `gorm:"column:need_id;not null;index"`
	StripeSessionID string                  `gorm:"column:stripe_session_id;not null;uniqueIndex:ux_gift_orders_stripe_session_id"`
	PaymentIntentID *string                 `gorm:"column:payment_intent_id"`
	GiftAmount      decimal.Decimal         `gorm:"column:gift_amount;type:numeric(12,2);not null"`
	PlatformSupport decimal.Decimal         `gorm:"column:platform_support;type:numeric(12,2);not null;default:0"`
	TipPercent      int                     `gorm:"column:tip_percent;not null;default:0"`
	TotalCharged    decimal.Decimal         `gorm:"column:total_charged;type:numeric(12,2);not null"`
	Currency        string                  `gorm:"column:currency;not null;default:'usd'"`
	DonorName       *string                 `gorm:"column:donor_name"`
	DonorEmail      *string                 `gorm:"column:donor_email"`
	IsAnonymous     bool                    `gorm:"column:is_anonymous;not null;default:false"`
	PaymentStatus   enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	OffsiteStatus   enums.OffsiteGiftStatus `gorm:"column:offsite_status;type:text;not null;default:'unconfirmed'"`
	ReviewedBy      *string                 `gorm:"column:reviewed_by"`
	ReviewedAt      *time.Time              `gorm:"column:reviewed_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (GiftOrder) TableName() string { return "gift_orders" }
