package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/upliftbridge/upliftbridge-backend/api/middleware"
	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/funding"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// AdminOrderList returns recorded gift orders, filterable by need and
// offsite confirmation status.
func AdminOrderList(svc funding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		params := funding.ListOrdersParams{
			OffsiteStatus: strings.TrimSpace(r.URL.Query().Get("offsite_status")),
			Limit:         limit,
			Cursor:        strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("need_id")); raw != "" {
			needID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || needID <= 0 {
				responses.WriteError(ctx, logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "need_id must be a positive integer"))
				return
			}
			params.NeedID = needID
		}

		result, err := svc.ListOrders(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminOrderConfirmOffsite marks an off-platform gift as verified.
func AdminOrderConfirmOffsite(svc funding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.ConfirmOffsiteGift(ctx, id, middleware.AdminActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// AdminOrderRejectOffsite marks an off-platform gift claim as unverified.
func AdminOrderRejectOffsite(svc funding.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "funding service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		order, err := svc.RejectOffsiteGift(ctx, id, middleware.AdminActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
