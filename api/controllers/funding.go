package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/funding"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

type startCheckoutPayload struct {
	GiftAmount  decimal.Decimal `json:"gift_amount" validate:"required"`
	TipPercent  int             `json:"tip_percent" validate:"min=0,max=100"`
	IsAnonymous bool            `json:"is_anonymous"`
	DonorEmail  string          `json:"donor_email" validate:"omitempty,email"`
}

// FundingQuote prices a prospective gift without touching the provider.
func FundingQuote(svc funding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		gift, err := decimal.NewFromString(strings.TrimSpace(r.URL.Query().Get("gift_amount")))
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "gift_amount must be a decimal amount"))
			return
		}
		tip, err := validators.ParseQueryInt(r, "tip_percent", 0, 0, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		quote, err := svc.Quote(ctx, needID, funding.QuoteParams{GiftAmount: gift, TipPercent: tip})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// FundingCheckout opens a hosted checkout session and returns the redirect.
func FundingCheckout(svc funding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload startCheckoutPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		redirect, err := svc.StartCheckout(ctx, funding.StartCheckoutParams{
			NeedID:      needID,
			GiftAmount:  payload.GiftAmount,
			TipPercent:  payload.TipPercent,
			IsAnonymous: payload.IsAnonymous,
			DonorEmail:  payload.DonorEmail,
			Origin:      requestOrigin(r),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, redirect)
	}
}

// FundingSuccess is the provider return URL. Consistency rejections send the
// donor back to the funding form instead of rendering an error.
func FundingSuccess(svc funding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		result, err := svc.Reconcile(ctx, needID, sessionID)
		if err != nil {
			if errors.Is(err, funding.ErrRetryFunding) {
				http.Redirect(w, r, fmt.Sprintf("/api/v1/needs/%d/fund", needID), http.StatusSeeOther)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// requestOrigin rebuilds the scheme and host the client used, honoring the
// proxy headers set by the platform load balancer.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
