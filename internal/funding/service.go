package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	pkgdb "github.com/upliftbridge/upliftbridge-backend/pkg/db"
	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/metrics"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// ErrRetryFunding signals a consistency rejection at reconciliation time:
// unpaid session, metadata mismatch, or amount drift. The caller sends the
// donor back to the funding form instead of surfacing an error.
var ErrRetryFunding = errors.New("return to funding form")

const (
	checkoutProductName = "UpliftBridge Platform Support"
	checkoutCurrency    = "usd"

	successPathTemplate = "/api/v1/needs/%d/fund/success?session_id={CHECKOUT_SESSION_ID}"
	cancelPathTemplate  = "/api/v1/needs/%d/fund"
)

// amountTolerance absorbs cent-rounding drift between the fee we quoted and
// the total the provider reports having charged.
var amountTolerance = decimal.RequireFromString("0.02")

// Service defines the funding quote, checkout, and reconciliation operations.
type Service interface {
	Quote(ctx context.Context, needID int64, params QuoteParams) (*Quote, error)
	StartCheckout(ctx context.Context, params StartCheckoutParams) (*CheckoutRedirect, error)
	Reconcile(ctx context.Context, needID int64, sessionID string) (*ReconcileResult, error)
	ListOrders(ctx context.Context, params ListOrdersParams) (*OrderListResult, error)
	ConfirmOffsiteGift(ctx context.Context, orderID int64, reviewer string) (*models.GiftOrder, error)
	RejectOffsiteGift(ctx context.Context, orderID int64, reviewer string) (*models.GiftOrder, error)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	checkout CheckoutClient
	tx       TxRunner
	logg     *logger.Logger
	metrics  *metrics.FundingMetrics
}

// QuoteParams carries donor input for a funding quote.
type QuoteParams struct {
	GiftAmount decimal.Decimal
	TipPercent int
}

// StartCheckoutParams carries everything needed to open a hosted checkout.
type StartCheckoutParams struct {
	NeedID      int64
	GiftAmount  decimal.Decimal
	TipPercent  int
	IsAnonymous bool
	DonorEmail  string
	Origin      string
}

// CheckoutRedirect is the provider-issued redirect target.
type CheckoutRedirect struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// ReconcileResult pairs the recorded order with a fresh need snapshot for the
// confirmation page.
type ReconcileResult struct {
	Order           models.GiftOrder `json:"order"`
	Need            models.Need      `json:"need"`
	AlreadyRecorded bool             `json:"already_recorded"`
}

// ListOrdersParams configures the admin gift-order listing.
type ListOrdersParams struct {
	NeedID        int64
	OffsiteStatus string
	Limit         int
	Cursor        string
}

// OrderListResult wraps returned orders and the cursor for the next page.
type OrderListResult struct {
	Items  []models.GiftOrder `json:"items"`
	Cursor string             `json:"cursor"`
}

// NewService wires funding dependencies.
func NewService(repo Repository, checkout CheckoutClient, tx TxRunner, logg *logger.Logger, m *metrics.FundingMetrics) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "funding repository required")
	}
	if checkout == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "checkout client required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, checkout: checkout, tx: tx, logg: logg, metrics: m}, nil
}

func (s *service) loadPublishedNeed(ctx context.Context, needID int64) (*models.Need, error) {
	need, err := s.repo.FindNeedByID(ctx, needID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load need")
	}
	if need.Status != enums.NeedStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
	}
	return need, nil
}

func (s *service) Quote(ctx context.Context, needID int64, params QuoteParams) (*Quote, error) {
	if needID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}

	need, err := s.loadPublishedNeed(ctx, needID)
	if err != nil {
		return nil, err
	}

	quote, err := BuildQuote(*need, params.GiftAmount, params.TipPercent)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *service) StartCheckout(ctx context.Context, params StartCheckoutParams) (*CheckoutRedirect, error) {
	if params.NeedID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	if params.Origin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request origin required")
	}

	ctx = s.logg.WithNeedID(ctx, params.NeedID)

	need, err := s.loadPublishedNeed(ctx, params.NeedID)
	if err != nil {
		return nil, err
	}

	quote, err := BuildQuote(*need, params.GiftAmount, params.TipPercent)
	if err != nil {
		s.metrics.IncCheckoutStarted("rejected")
		return nil, err
	}

	donorEmail := strings.TrimSpace(params.DonorEmail)
	if params.IsAnonymous {
		donorEmail = ""
	}

	origin := strings.TrimSuffix(params.Origin, "/")
	successURL := origin + fmt.Sprintf(successPathTemplate, need.ID)
	cancelURL := origin + fmt.Sprintf(cancelPathTemplate, need.ID)

	unitAmount := quote.Fee.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	checkoutParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(checkoutCurrency),
					UnitAmount: stripe.Int64(unitAmount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(checkoutProductName),
						Description: stripe.String(fmt.Sprintf("Platform support for %q", need.Title)),
					},
				},
			},
		},
	}
	if donorEmail != "" {
		checkoutParams.CustomerEmail = stripe.String(donorEmail)
	}
	for key, value := range encodeCheckoutMetadata(need.ID, quote, donorEmail, params.IsAnonymous) {
		checkoutParams.AddMetadata(key, value)
	}

	sess, err := s.checkout.CreateSession(ctx, checkoutParams)
	if err != nil {
		s.metrics.IncCheckoutStarted("provider_error")
		s.logg.Error(ctx, "creating checkout session failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	s.metrics.IncCheckoutStarted("ok")
	s.logg.Info(s.logg.WithCheckoutSessionID(ctx, sess.ID), "checkout session created")

	return &CheckoutRedirect{SessionID: sess.ID, RedirectURL: sess.URL}, nil
}

func (s *service) Reconcile(ctx context.Context, needID int64, sessionID string) (*ReconcileResult, error) {
	started := time.Now()
	outcome := "error"
	defer func() {
		s.metrics.IncReconcileOutcome(outcome)
		s.metrics.ObserveReconcile(outcome, time.Since(started))
	}()

	if needID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	if strings.TrimSpace(sessionID) == "" {
		outcome = "retry"
		return nil, fmt.Errorf("%w: missing session id", ErrRetryFunding)
	}

	ctx = s.logg.WithNeedID(ctx, needID)
	ctx = s.logg.WithCheckoutSessionID(ctx, sessionID)

	sess, err := s.checkout.GetSession(ctx, sessionID)
	if err != nil {
		s.logg.Error(ctx, "fetching checkout session failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch checkout session")
	}

	if !strings.EqualFold(string(sess.PaymentStatus), "paid") {
		outcome = "retry"
		s.logg.Warn(ctx, "checkout session not paid")
		return nil, fmt.Errorf("%w: session not paid", ErrRetryFunding)
	}
	if !metaNeedIDMatches(sess.Metadata, needID) {
		outcome = "retry"
		s.logg.Warn(ctx, "checkout metadata does not match need")
		return nil, fmt.Errorf("%w: metadata mismatch", ErrRetryFunding)
	}

	need, err := s.loadPublishedNeed(ctx, needID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			outcome = "not_found"
		}
		return nil, err
	}

	giftAmount := metaAmount(sess.Metadata, metaGiftAmount)
	platformSupport := metaAmount(sess.Metadata, metaPlatformSupport)

	stripePaid := decimal.New(sess.AmountTotal, -2)
	if stripePaid.Sub(platformSupport).Abs().GreaterThan(amountTolerance) {
		outcome = "retry"
		s.logg.Warn(ctx, "charged amount drifted from quoted platform support")
		return nil, fmt.Errorf("%w: amount mismatch", ErrRetryFunding)
	}

	// Fast path: session already reconciled.
	if existing, err := s.repo.FindOrderBySessionID(ctx, sessionID); err == nil {
		outcome = "duplicate"
		return &ReconcileResult{Order: *existing, Need: *need, AlreadyRecorded: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup gift order")
	}

	order := &models.GiftOrder{
		NeedID:          need.ID,
		StripeSessionID: sessionID,
		GiftAmount:      giftAmount,
		PlatformSupport: platformSupport,
		TipPercent:      metaTip(sess.Metadata),
		TotalCharged:    stripePaid,
		Currency:        checkoutCurrency,
		IsAnonymous:     metaAnonymous(sess.Metadata),
		PaymentStatus:   enums.PaymentStatusPaid,
		OffsiteStatus:   enums.OffsiteGiftStatusUnconfirmed,
	}
	if !order.IsAnonymous {
		if email := strings.TrimSpace(sess.Metadata[metaDonorEmail]); email != "" {
			order.DonorEmail = &email
		}
	}
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		intentID := sess.PaymentIntent.ID
		order.PaymentIntentID = &intentID
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return repo.IncrementAmountRaised(ctx, need.ID, giftAmount)
	})
	if txErr != nil {
		// A concurrent reconciliation for the same session won the insert
		// race; the unique index guarantees at most one order per session.
		if dbIsUniqueViolation(txErr) {
			existing, err := s.repo.FindOrderBySessionID(ctx, sessionID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload gift order after race")
			}
			outcome = "duplicate"
			return &ReconcileResult{Order: *existing, Need: *need, AlreadyRecorded: true}, nil
		}
		s.logg.Error(ctx, "recording gift order failed", txErr)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "record gift order")
	}

	updated, err := s.repo.FindNeedByID(ctx, need.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload need")
	}

	outcome = "recorded"
	s.logg.Info(ctx, "gift order recorded")
	return &ReconcileResult{Order: *order, Need: *updated}, nil
}

func (s *service) ListOrders(ctx context.Context, params ListOrdersParams) (*OrderListResult, error) {
	query := listOrdersParams{
		NeedID: params.NeedID,
		Limit:  pagination.LimitWithBuffer(params.Limit),
	}
	if params.OffsiteStatus != "" {
		status, err := enums.ParseOffsiteGiftStatus(params.OffsiteStatus)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offsite status")
		}
		query.OffsiteStatus = status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListOrders(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gift orders")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &OrderListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) ConfirmOffsiteGift(ctx context.Context, orderID int64, reviewer string) (*models.GiftOrder, error) {
	return s.resolveOffsiteGift(ctx, orderID, reviewer, enums.OffsiteGiftStatusConfirmed)
}

func (s *service) RejectOffsiteGift(ctx context.Context, orderID int64, reviewer string) (*models.GiftOrder, error) {
	return s.resolveOffsiteGift(ctx, orderID, reviewer, enums.OffsiteGiftStatusRejected)
}

func (s *service) resolveOffsiteGift(ctx context.Context, orderID int64, reviewer string, status enums.OffsiteGiftStatus) (*models.GiftOrder, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(reviewer) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer required")
	}

	affected, err := s.repo.UpdateOrderOffsiteStatus(ctx, orderID, status, reviewer, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update offsite status")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload gift order")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "gift is not awaiting confirmation")
	}
	return order, nil
}

func dbIsUniqueViolation(err error) bool {
	return pkgdb.IsUniqueViolation(err, SessionIDConstraint)
}
