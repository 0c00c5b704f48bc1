package funding

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
)

func setupFundingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	needs := `
CREATE TABLE IF NOT EXISTS needs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  summary TEXT NOT NULL,
  description TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT 'other',
  status TEXT NOT NULL DEFAULT 'pending',
  amount_needed NUMERIC NOT NULL,
  amount_raised NUMERIC NOT NULL DEFAULT 0,
  beneficiary_name TEXT NOT NULL,
  beneficiary_email TEXT NOT NULL,
  city TEXT,
  region TEXT,
  pay_to TEXT,
  institution_name TEXT,
  institution_type TEXT,
  institution_payment_link TEXT,
  prefer_direct_to_institution INTEGER NOT NULL DEFAULT 0,
  verification_level TEXT NOT NULL DEFAULT 'basic_contact_verified',
  verification_note TEXT,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  rejection_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	giftOrders := `
CREATE TABLE IF NOT EXISTS gift_orders (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  need_id INTEGER NOT NULL,
  stripe_session_id TEXT NOT NULL,
  payment_intent_id TEXT,
  gift_amount NUMERIC NOT NULL,
  platform_support NUMERIC NOT NULL DEFAULT 0,
  tip_percent INTEGER NOT NULL DEFAULT 0,
  total_charged NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  donor_name TEXT,
  donor_email TEXT,
  is_anonymous INTEGER NOT NULL DEFAULT 0,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  offsite_status TEXT NOT NULL DEFAULT 'unconfirmed',
  reviewed_by TEXT,
  reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	sessionIndex := `
CREATE UNIQUE INDEX IF NOT EXISTS ux_gift_orders_stripe_session_id
  ON gift_orders (stripe_session_id);`

	require.NoError(t, db.Exec(needs).Error)
	require.NoError(t, db.Exec(giftOrders).Error)
	require.NoError(t, db.Exec(sessionIndex).Error)
	return db
}

func seedNeed(t *testing.T, db *gorm.DB) *models.Need {
	t.Helper()
	need := &models.Need{
		Title:            "Winter coats",
		Summary:          "Coats for three kids",
		Description:      "Longer form text",
		Category:         enums.NeedCategoryFamily,
		Status:           enums.NeedStatusApproved,
		AmountNeeded:     decimal.RequireFromString("1000"),
		AmountRaised:     decimal.Zero,
		BeneficiaryName:  "J. Doe",
		BeneficiaryEmail: "jdoe@example.com",
	}
	require.NoError(t, db.Create(need).Error)
	return need
}

func seedOrder(t *testing.T, repo Repository, needID int64, sessionID string, createdAt time.Time) *models.GiftOrder {
	t.Helper()
	order := &models.GiftOrder{
		NeedID:          needID,
		StripeSessionID: sessionID,
		GiftAmount:      decimal.RequireFromString("100"),
		PlatformSupport: decimal.RequireFromString("5"),
		TotalCharged:    decimal.RequireFromString("5"),
		PaymentStatus:   enums.PaymentStatusPaid,
		OffsiteStatus:   enums.OffsiteGiftStatusUnconfirmed,
		CreatedAt:       createdAt,
	}
	require.NoError(t, repo.CreateOrder(context.Background(), order))
	return order
}

func TestCreateOrderRejectsDuplicateSession(t *testing.T) {
	db := setupFundingTestDB(t)
	repo := NewRepository(db)
	need := seedNeed(t, db)

	seedOrder(t, repo, need.ID, "cs_test_dup", time.Now())

	dup := &models.GiftOrder{
		NeedID:          need.ID,
		StripeSessionID: "cs_test_dup",
		GiftAmount:      decimal.RequireFromString("100"),
		TotalCharged:    decimal.RequireFromString("5"),
	}
	err := repo.CreateOrder(context.Background(), dup)
	require.Error(t, err)
	assert.True(t, dbIsUniqueViolation(err), "duplicate session should surface as a unique violation")
}

func TestIncrementAmountRaised(t *testing.T) {
	db := setupFundingTestDB(t)
	repo := NewRepository(db)
	need := seedNeed(t, db)

	require.NoError(t, repo.IncrementAmountRaised(context.Background(), need.ID, decimal.RequireFromString("150.50")))
	require.NoError(t, repo.IncrementAmountRaised(context.Background(), need.ID, decimal.RequireFromString("49.50")))

	reloaded, err := repo.FindNeedByID(context.Background(), need.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AmountRaised.Equal(decimal.RequireFromString("200")),
		"expected 200 raised, got %s", reloaded.AmountRaised)
}

func TestOrderDonorNameRoundTrip(t *testing.T) {
	db := setupFundingTestDB(t)
	repo := NewRepository(db)
	need := seedNeed(t, db)

	name := "J. Donor"
	order := &models.GiftOrder{
		NeedID:          need.ID,
		StripeSessionID: "cs_test_named",
		DonorName:       &name,
		GiftAmount:      decimal.RequireFromString("100"),
		TotalCharged:    decimal.RequireFromString("5"),
	}
	require.NoError(t, repo.CreateOrder(context.Background(), order))

	found, err := repo.FindOrderBySessionID(context.Background(), "cs_test_named")
	require.NoError(t, err)
	require.NotNil(t, found.DonorName)
	assert.Equal(t, name, *found.DonorName)

	anon := seedOrder(t, repo, need.ID, "cs_test_nameless", time.Now())
	reloaded, err := repo.FindOrderByID(context.Background(), anon.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.DonorName)
}

func TestFindOrderBySessionID(t *testing.T) {
	db := setupFundingTestDB(t)
	repo := NewRepository(db)
	need := seedNeed(t, db)

	created := seedOrder(t, repo, need.ID, "cs_test_find", time.Now())

	found, err := repo.FindOrderBySessionID(context.Background(), "cs_test_find")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repo.FindOrderBySessionID(context.Background(), "cs_test_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListOrdersPaginatesAndFilters(t *testing.T) {
	db := setupFundingTestDB(t)
	repo := NewRepository(db)
	need := seedNeed(t, db)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		seedOrder(t, repo, need.ID, fmt.Sprintf("cs_test_%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	page, cursor, err := repo.ListOrders(context.Background(), listOrdersParams{NeedID: need.ID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, page, 3)
	require.NotNil(t, cursor)

	rest, next, err := repo.ListOrders(context.Background(), listOrdersParams{NeedID: need.ID, Limit: 3, Cursor: cursor})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Nil(t, next)

	confirmed, _, err := repo.ListOrders(context.Background(), listOrdersParams{
		NeedID:        need.ID,
		OffsiteStatus: enums.OffsiteGiftStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Empty(t, confirmed)
}

func TestUpdateOrderOffsiteStatusGuardsState(t *testing.T) {
	db := setupFundingTestDB(t)
	repo := NewRepository(db)
	need := seedNeed(t, db)
	order := seedOrder(t, repo, need.ID, "cs_test_offsite", time.Now())

	affected, err := repo.UpdateOrderOffsiteStatus(context.Background(), order.ID, enums.OffsiteGiftStatusConfirmed, "Admin", time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// Only unconfirmed orders can be resolved, so the second pass is a no-op.
	affected, err = repo.UpdateOrderOffsiteStatus(context.Background(), order.ID, enums.OffsiteGiftStatusRejected, "Admin", time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	reloaded, err := repo.FindOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OffsiteGiftStatusConfirmed, reloaded.OffsiteStatus)
	require.NotNil(t, reloaded.ReviewedBy)
	assert.Equal(t, "Admin", *reloaded.ReviewedBy)
}
