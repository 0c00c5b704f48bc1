package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/pledges"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

type createPledgePayload struct {
	Description string `json:"description" validate:"required"`
	DonorName   string `json:"donor_name" validate:"required"`
	DonorEmail  string `json:"donor_email" validate:"omitempty,email"`
}

// PledgeCreate records an offer of goods or services against a need.
func PledgeCreate(svc pledges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pledges service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createPledgePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		pledge, err := svc.Create(ctx, pledges.CreateParams{
			NeedID:      needID,
			Description: payload.Description,
			DonorName:   payload.DonorName,
			DonorEmail:  payload.DonorEmail,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, pledge)
	}
}

// AdminPledgeList returns pledges, filterable by need and status.
func AdminPledgeList(svc pledges.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pledges service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		params := pledges.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
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

		result, err := svc.List(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func adminPledgeTransition(svc pledges.Service, logg *logger.Logger,
	apply func(r *http.Request, id int64) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pledges service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "pledgeID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		pledge, err := apply(r, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, pledge)
	}
}

// AdminPledgeAccept moves an offered pledge to accepted.
func AdminPledgeAccept(svc pledges.Service, logg *logger.Logger) http.HandlerFunc {
	return adminPledgeTransition(svc, logg, func(r *http.Request, id int64) (any, error) {
		return svc.Accept(r.Context(), id)
	})
}

// AdminPledgeDecline turns down an offered pledge.
func AdminPledgeDecline(svc pledges.Service, logg *logger.Logger) http.HandlerFunc {
	return adminPledgeTransition(svc, logg, func(r *http.Request, id int64) (any, error) {
		return svc.Decline(r.Context(), id)
	})
}

// AdminPledgeFulfill marks an accepted pledge as delivered.
func AdminPledgeFulfill(svc pledges.Service, logg *logger.Logger) http.HandlerFunc {
	return adminPledgeTransition(svc, logg, func(r *http.Request, id int64) (any, error) {
		return svc.Fulfill(r.Context(), id)
	})
}
