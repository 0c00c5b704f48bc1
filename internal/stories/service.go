package stories

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

const galleryMaxURLs = 10

// WriteParams is the admin payload for creating or editing a story.
type WriteParams struct {
	Title       string
	Body        string
	HeroURL     string
	GalleryURLs []string
}

// ListParams configures story listings.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps returned stories and the cursor for the next page.
type ListResult struct {
	Items  []models.Story `json:"items"`
	Cursor string         `json:"cursor"`
}

// Service defines editorial story management and the public feed.
type Service interface {
	Create(ctx context.Context, params WriteParams) (*models.Story, error)
	Edit(ctx context.Context, id int64, params WriteParams) (*models.Story, error)
	GetPublished(ctx context.Context, id int64) (*models.Story, error)
	GetAny(ctx context.Context, id int64) (*models.Story, error)
	ListPublished(ctx context.Context, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context, params ListParams) (*ListResult, error)
	SetPublished(ctx context.Context, id int64, published bool) (*models.Story, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires story dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stories repository required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func normalizeWrite(params WriteParams) (WriteParams, pq.StringArray, error) {
	params.Title = strings.TrimSpace(params.Title)
	params.Body = strings.TrimSpace(params.Body)
	params.HeroURL = strings.TrimSpace(params.HeroURL)

	switch {
	case params.Title == "":
		return params, nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	case params.Body == "":
		return params, nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}

	gallery := make(pq.StringArray, 0, len(params.GalleryURLs))
	for _, url := range params.GalleryURLs {
		if trimmed := strings.TrimSpace(url); trimmed != "" {
			gallery = append(gallery, trimmed)
		}
	}
	if len(gallery) > galleryMaxURLs {
		return params, nil, pkgerrors.Newf(pkgerrors.CodeValidation,
			"gallery may hold at most %d images", galleryMaxURLs)
	}
	return params, gallery, nil
}

func (s *service) Create(ctx context.Context, params WriteParams) (*models.Story, error) {
	params, gallery, err := normalizeWrite(params)
	if err != nil {
		return nil, err
	}

	story := &models.Story{
		Title:       params.Title,
		Body:        params.Body,
		GalleryURLs: gallery,
	}
	if params.HeroURL != "" {
		story.HeroURL = &params.HeroURL
	}

	if err := s.repo.Create(ctx, story); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create story")
	}

	s.logg.Info(s.logg.WithField(ctx, "story_id", story.ID), "story drafted")
	return story, nil
}

func (s *service) Edit(ctx context.Context, id int64, params WriteParams) (*models.Story, error) {
	story, err := s.GetAny(ctx, id)
	if err != nil {
		return nil, err
	}

	params, gallery, err := normalizeWrite(params)
	if err != nil {
		return nil, err
	}

	story.Title = params.Title
	story.Body = params.Body
	story.GalleryURLs = gallery
	story.HeroURL = nil
	if params.HeroURL != "" {
		story.HeroURL = &params.HeroURL
	}

	if err := s.repo.Update(ctx, story); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update story")
	}
	return story, nil
}

func (s *service) GetPublished(ctx context.Context, id int64) (*models.Story, error) {
	story, err := s.GetAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if !story.Published {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "story not found")
	}
	return story, nil
}

func (s *service) GetAny(ctx context.Context, id int64) (*models.Story, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "story id required")
	}
	story, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "story not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load story")
	}
	return story, nil
}

func (s *service) ListPublished(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, true)
}

func (s *service) ListAll(ctx context.Context, params ListParams) (*ListResult, error) {
	return s.list(ctx, params, false)
}

func (s *service) list(ctx context.Context, params ListParams, publishedOnly bool) (*ListResult, error) {
	query := listStoriesParams{PublishedOnly: publishedOnly, Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stories")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) SetPublished(ctx context.Context, id int64, published bool) (*models.Story, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "story id required")
	}

	affected, err := s.repo.SetPublished(ctx, id, published)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish story")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "story not found")
	}
	return s.GetAny(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "story id required")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete story")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "story not found")
	}
	return nil
}
