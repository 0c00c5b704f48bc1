package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/needs"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

const photoFormField = "photo"

type needItemPayload struct {
	Name string `json:"name" validate:"max=120"`
	Cost string `json:"cost" validate:"max=60"`
	Link string `json:"link" validate:"max=400"`
}

type createNeedPayload struct {
	Title            string            `json:"title" validate:"required,max=140"`
	Category         string            `json:"category"`
	Story            string            `json:"story" validate:"required,max=4000"`
	LongTermDream    string            `json:"long_term_dream" validate:"required,max=1200"`
	TriedAlready     string            `json:"tried_already" validate:"required,max=1200"`
	Deadline         string            `json:"deadline" validate:"max=120"`
	Urgency          string            `json:"urgency" validate:"max=40"`
	Items            []needItemPayload `json:"items" validate:"required,min=1,dive"`
	AmountNeeded     decimal.Decimal   `json:"amount_needed" validate:"required"`
	BeneficiaryName  string            `json:"beneficiary_name" validate:"required,max=120"`
	BeneficiaryEmail string            `json:"beneficiary_email" validate:"required,email"`
	City             string            `json:"city"`
	Region           string            `json:"region"`

	PayTo                     string `json:"pay_to" validate:"max=180"`
	InstitutionName           string `json:"institution_name" validate:"max=180"`
	InstitutionType           string `json:"institution_type" validate:"max=60"`
	InstitutionPaymentLink    string `json:"institution_payment_link" validate:"max=400"`
	PreferDirectToInstitution bool   `json:"prefer_direct_to_institution"`
	VerificationNote          string `json:"verification_note" validate:"max=600"`
}

// NeedCreate accepts a public need submission for review.
func NeedCreate(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}

		var payload createNeedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]needs.ItemLine, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, needs.ItemLine{Name: item.Name, Cost: item.Cost, Link: item.Link})
		}

		need, err := svc.Create(ctx, needs.CreateParams{
			Title:            payload.Title,
			Category:         payload.Category,
			Story:            payload.Story,
			LongTermDream:    payload.LongTermDream,
			TriedAlready:     payload.TriedAlready,
			Deadline:         payload.Deadline,
			Urgency:          payload.Urgency,
			Items:            items,
			AmountNeeded:     payload.AmountNeeded,
			BeneficiaryName:  payload.BeneficiaryName,
			BeneficiaryEmail: payload.BeneficiaryEmail,
			City:             payload.City,
			Region:           payload.Region,

			PayTo:                     payload.PayTo,
			InstitutionName:           payload.InstitutionName,
			InstitutionType:           payload.InstitutionType,
			InstitutionPaymentLink:    payload.InstitutionPaymentLink,
			PreferDirectToInstitution: payload.PreferDirectToInstitution,
			VerificationNote:          payload.VerificationNote,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, need)
	}
}

func listParamsFromQuery(r *http.Request) (needs.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return needs.ListParams{}, err
	}
	return needs.ListParams{
		Status:   strings.TrimSpace(r.URL.Query().Get("status")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
		Limit:    limit,
		Cursor:   strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// NeedList returns the public feed of approved needs.
func NeedList(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}

		params, err := listParamsFromQuery(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListPublished(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type submissionStatusView struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// NeedSubmissionStatus lets a submitter check where their need stands in
// review. It resolves any state but returns only the confirmation fields.
func NeedSubmissionStatus(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetAny(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		need := detail.Need
		responses.WriteSuccess(w, submissionStatusView{
			ID:              need.ID,
			Title:           need.Title,
			Status:          need.Status.String(),
			RejectionReason: need.RejectionReason,
			CreatedAt:       need.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

// NeedPaymentRouting tells the donor where to pay the offsite gift once the
// platform-support checkout has settled.
func NeedPaymentRouting(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		routing, err := svc.GetPaymentRouting(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, routing)
	}
}

// NeedDetail returns a published need with its photos and visible updates.
func NeedDetail(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetPublished(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}
