package controllers

import (
	"net/http"
	"strings"

	"github.com/upliftbridge/upliftbridge-backend/api/responses"
	"github.com/upliftbridge/upliftbridge-backend/api/validators"
	"github.com/upliftbridge/upliftbridge-backend/internal/stories"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

type writeStoryPayload struct {
	Title       string   `json:"title" validate:"required"`
	Body        string   `json:"body" validate:"required"`
	HeroURL     string   `json:"hero_url"`
	GalleryURLs []string `json:"gallery_urls"`
}

type publishStoryPayload struct {
	Published *bool `json:"published" validate:"required"`
}

func storyListParams(r *http.Request) (stories.ListParams, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return stories.ListParams{}, err
	}
	return stories.ListParams{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

// StoryList returns the public feed of published stories.
func StoryList(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		params, err := storyListParams(r)
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

// StoryDetail returns a single published story.
func StoryDetail(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "storyID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		story, err := svc.GetPublished(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, story)
	}
}

// AdminStoryList returns every story, drafts included.
func AdminStoryList(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		params, err := storyListParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ListAll(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminStoryCreate drafts a new story.
func AdminStoryCreate(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		var payload writeStoryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		story, err := svc.Create(ctx, stories.WriteParams{
			Title:       payload.Title,
			Body:        payload.Body,
			HeroURL:     payload.HeroURL,
			GalleryURLs: payload.GalleryURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, story)
	}
}

// AdminStoryEdit replaces a story's editorial content.
func AdminStoryEdit(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "storyID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload writeStoryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		story, err := svc.Edit(ctx, id, stories.WriteParams{
			Title:       payload.Title,
			Body:        payload.Body,
			HeroURL:     payload.HeroURL,
			GalleryURLs: payload.GalleryURLs,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, story)
	}
}

// AdminStorySetPublished toggles a story on or off the public feed.
func AdminStorySetPublished(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "storyID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload publishStoryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		story, err := svc.SetPublished(ctx, id, *payload.Published)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, story)
	}
}

// AdminStoryDelete removes a story.
func AdminStoryDelete(svc stories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stories service unavailable"))
			return
		}

		id, err := validators.ParseIDParam(r, "storyID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
