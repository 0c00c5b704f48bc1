package controllers

import (
	"net/http"

	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/updates"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

type createUpdatePayload struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"body" validate:"required"`
}

type updateVisibilityPayload struct {
	Visible *bool `json:"visible" validate:"required"`
}

// NeedUpdateList returns visible updates for a published need.
func NeedUpdateList(svc updates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "updates service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.ListPublic(ctx, needID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// AdminUpdateList returns every update for a need, hidden ones included.
func AdminUpdateList(svc updates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "updates service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items, err := svc.ListAll(ctx, needID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// AdminUpdateCreate posts a progress update under a need.
func AdminUpdateCreate(svc updates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "updates service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createUpdatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		update, err := svc.Create(ctx, needID, updates.CreateParams{
			Title: payload.Title,
			Body:  payload.Body,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, update)
	}
}

// AdminUpdateSetVisibility shows or hides an update on the public page.
func AdminUpdateSetVisibility(svc updates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "updates service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		updateID, err := validators.ParseIDParam(r, "updateID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateVisibilityPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		update, err := svc.SetVisibility(ctx, needID, updateID, *payload.Visible)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, update)
	}
}

// AdminUpdateDelete removes an update entirely.
func AdminUpdateDelete(svc updates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "updates service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		updateID, err := validators.ParseIDParam(r, "updateID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, needID, updateID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
