package controllers

import (
	"net/http"

	"github.com/upliftbridge/upliftbridge-backend/api/middleware"
	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/needs"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

type rejectNeedPayload struct {
	Reason string `json:"reason" validate:"required"`
}

// AdminNeedList returns needs awaiting review, or any status on request.
func AdminNeedList(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListForReview(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminNeedDetail returns any need regardless of status.
func AdminNeedDetail(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
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

		responses.WriteSuccess(w, detail)
	}
}

// AdminNeedApprove publishes a pending need.
func AdminNeedApprove(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
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

		need, err := svc.Approve(ctx, id, middleware.AdminActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, need)
	}
}

// AdminNeedReject declines a pending need with a written reason.
func AdminNeedReject(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload rejectNeedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		need, err := svc.Reject(ctx, id, middleware.AdminActorFromContext(ctx), payload.Reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, need)
	}
}

// AdminNeedClose retires an approved need from the public feed.
func AdminNeedClose(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
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

		need, err := svc.Close(ctx, id, middleware.AdminActorFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, need)
	}
}

// AdminNeedAddPhoto stores an uploaded image under a need.
func AdminNeedAddPhoto(svc needs.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
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

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}
		file, header, err := r.FormFile(photoFormField)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "photo file required"))
			return
		}
		defer file.Close()

		photo, err := svc.AddPhoto(ctx, id, header.Filename, file)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, photo)
	}
}

// AdminNeedRemovePhoto deletes a photo record and its stored file.
func AdminNeedRemovePhoto(svc needs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "needs service unavailable"))
			return
		}

		needID, err := validators.ParseIDParam(r, "needID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		photoID, err := validators.ParseIDParam(r, "photoID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.RemovePhoto(ctx, needID, photoID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
