package updates

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

const titleMaxLen = 120

// NeedFinder looks up the parent need. Satisfied by the needs repository.
type NeedFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Need, error)
}

// CreateParams is the admin payload for posting an update under a need.
type CreateParams struct {
	Title string
	Body  string
}

// Service defines progress update posting and curation.
type Service interface {
	Create(ctx context.Context, needID int64, params CreateParams) (*models.NeedUpdate, error)
	ListPublic(ctx context.Context, needID int64) ([]models.NeedUpdate, error)
	ListAll(ctx context.Context, needID int64) ([]models.NeedUpdate, error)
	SetVisibility(ctx context.Context, needID, updateID int64, visible bool) (*models.NeedUpdate, error)
	Delete(ctx context.Context, needID, updateID int64) error
}

type service struct {
	repo  Repository
	needs NeedFinder
	logg  *logger.Logger
}

// NewService wires update dependencies.
func NewService(repo Repository, needs NeedFinder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "updates repository required")
	}
	if needs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "need finder required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, needs: needs, logg: logg}, nil
}

func (s *service) loadNeed(ctx context.Context, needID int64) (*models.Need, error) {
	if needID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	}
	need, err := s.needs.FindByID(ctx, needID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load need")
	}
	return need, nil
}

func (s *service) Create(ctx context.Context, needID int64, params CreateParams) (*models.NeedUpdate, error) {
	title := strings.TrimSpace(params.Title)
	body := strings.TrimSpace(params.Body)
	switch {
	case title == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	case len(title) > titleMaxLen:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "title must be at most %d characters", titleMaxLen)
	case body == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}

	if _, err := s.loadNeed(ctx, needID); err != nil {
		return nil, err
	}

	update := &models.NeedUpdate{
		NeedID:  needID,
		Title:   title,
		Body:    body,
		Visible: true,
	}
	if err := s.repo.Create(ctx, update); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create update")
	}

	s.logg.Info(s.logg.WithNeedID(ctx, needID), "need update posted")
	return update, nil
}

// ListPublic returns visible updates for an approved need only.
func (s *service) ListPublic(ctx context.Context, needID int64) ([]models.NeedUpdate, error) {
	need, err := s.loadNeed(ctx, needID)
	if err != nil {
		return nil, err
	}
	if need.Status != enums.NeedStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
	}

	updates, err := s.repo.ListByNeed(ctx, needID, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list updates")
	}
	return updates, nil
}

func (s *service) ListAll(ctx context.Context, needID int64) ([]models.NeedUpdate, error) {
	if _, err := s.loadNeed(ctx, needID); err != nil {
		return nil, err
	}
	updates, err := s.repo.ListByNeed(ctx, needID, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list updates")
	}
	return updates, nil
}

func (s *service) SetVisibility(ctx context.Context, needID, updateID int64, visible bool) (*models.NeedUpdate, error) {
	if needID <= 0 || updateID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id and update id required")
	}

	affected, err := s.repo.SetVisibility(ctx, needID, updateID, visible)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update visibility")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "update not found")
	}

	update, err := s.repo.FindByID(ctx, needID, updateID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload update")
	}
	return update, nil
}

func (s *service) Delete(ctx context.Context, needID, updateID int64) error {
	if needID <= 0 || updateID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "need id and update id required")
	}

	affected, err := s.repo.Delete(ctx, needID, updateID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete update")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "update not found")
	}
	return nil
}
