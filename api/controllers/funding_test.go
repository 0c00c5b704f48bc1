package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/internal/funding"
	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/types"
)

type stubFundingService struct {
	quoteFn     func(ctx context.Context, needID int64, params funding.QuoteParams) (*funding.Quote, error)
	checkoutFn  func(ctx context.Context, params funding.StartCheckoutParams) (*funding.CheckoutRedirect, error)
	reconcileFn func(ctx context.Context, needID int64, sessionID string) (*funding.ReconcileResult, error)
}

func (s *stubFundingService) Quote(ctx context.Context, needID int64, params funding.QuoteParams) (*funding.Quote, error) {
	return s.quoteFn(ctx, needID, params)
}

func (s *stubFundingService) StartCheckout(ctx context.Context, params funding.StartCheckoutParams) (*funding.CheckoutRedirect, error) {
	return s.checkoutFn(ctx, params)
}

func (s *stubFundingService) Reconcile(ctx context.Context, needID int64, sessionID string) (*funding.ReconcileResult, error) {
	return s.reconcileFn(ctx, needID, sessionID)
}

func (s *stubFundingService) ListOrders(ctx context.Context, params funding.ListOrdersParams) (*funding.OrderListResult, error) {
	return &funding.OrderListResult{}, nil
}

func (s *stubFundingService) ConfirmOffsiteGift(ctx context.Context, orderID int64, reviewer string) (*models.GiftOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift order not found")
}

func (s *stubFundingService) RejectOffsiteGift(ctx context.Context, orderID int64, reviewer string) (*models.GiftOrder, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift order not found")
}

func testLogg() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withNeedParam(req *http.Request, needID string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("needID", needID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestFundingQuoteParsesQuery(t *testing.T) {
	var gotNeedID int64
	var gotParams funding.QuoteParams
	stub := &stubFundingService{
		quoteFn: func(ctx context.Context, needID int64, params funding.QuoteParams) (*funding.Quote, error) {
			gotNeedID = needID
			gotParams = params
			return &funding.Quote{NeedID: needID, Fee: decimal.RequireFromString("12.00")}, nil
		},
	}

	req := withNeedParam(httptest.NewRequest(http.MethodGet, "/api/v1/needs/7/fund/quote?gift_amount=600&tip_percent=2", nil), "7")
	rec := httptest.NewRecorder()
	FundingQuote(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotNeedID != 7 {
		t.Fatalf("expected need 7, got %d", gotNeedID)
	}
	if !gotParams.GiftAmount.Equal(decimal.RequireFromString("600")) || gotParams.TipPercent != 2 {
		t.Fatalf("unexpected params %+v", gotParams)
	}
}

func TestFundingQuoteRejectsBadAmount(t *testing.T) {
	stub := &stubFundingService{}
	req := withNeedParam(httptest.NewRequest(http.MethodGet, "/api/v1/needs/7/fund/quote?gift_amount=abc", nil), "7")
	rec := httptest.NewRecorder()
	FundingQuote(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFundingCheckoutDerivesOrigin(t *testing.T) {
	var gotOrigin string
	stub := &stubFundingService{
		checkoutFn: func(ctx context.Context, params funding.StartCheckoutParams) (*funding.CheckoutRedirect, error) {
			gotOrigin = params.Origin
			return &funding.CheckoutRedirect{SessionID: "cs_test_1", RedirectURL: "https://checkout.example/cs_test_1"}, nil
		},
	}

	body := strings.NewReader(`{"gift_amount":"100","tip_percent":5,"donor_email":"d@example.com"}`)
	req := withNeedParam(httptest.NewRequest(http.MethodPost, "/api/v1/needs/7/fund", body), "7")
	req.Host = "upliftbridge.org"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	FundingCheckout(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotOrigin != "https://upliftbridge.org" {
		t.Fatalf("unexpected origin %q", gotOrigin)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	payload := envelope.Data.(map[string]any)
	if payload["redirect_url"] != "https://checkout.example/cs_test_1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestFundingSuccessRedirectsOnRetry(t *testing.T) {
	stub := &stubFundingService{
		reconcileFn: func(ctx context.Context, needID int64, sessionID string) (*funding.ReconcileResult, error) {
			return nil, funding.ErrRetryFunding
		},
	}

	req := withNeedParam(httptest.NewRequest(http.MethodGet, "/api/v1/needs/7/fund/success?session_id=", nil), "7")
	rec := httptest.NewRecorder()
	FundingSuccess(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/api/v1/needs/7/fund" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}

func TestFundingSuccessRendersConfirmation(t *testing.T) {
	stub := &stubFundingService{
		reconcileFn: func(ctx context.Context, needID int64, sessionID string) (*funding.ReconcileResult, error) {
			return &funding.ReconcileResult{AlreadyRecorded: true}, nil
		},
	}

	req := withNeedParam(httptest.NewRequest(http.MethodGet, "/api/v1/needs/7/fund/success?session_id=cs_test_1", nil), "7")
	rec := httptest.NewRecorder()
	FundingSuccess(stub, testLogg()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	payload := envelope.Data.(map[string]any)
	if payload["already_recorded"] != true {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestFundingHandlersNilService(t *testing.T) {
	req := withNeedParam(httptest.NewRequest(http.MethodGet, "/api/v1/needs/7/fund/quote", nil), "7")
	rec := httptest.NewRecorder()
	FundingQuote(nil, testLogg()).ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
