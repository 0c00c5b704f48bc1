package pledges

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	pkgerrors "github.com/upliftbridge/upliftbridge-backend/pkg/errors"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// NeedFinder looks up the parent need. Satisfied by the needs repository.
type NeedFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Need, error)
}

// CreateParams is the public payload for offering goods or services.
type CreateParams struct {
	NeedID      int64
	Description string
	DonorName   string
	DonorEmail  string
}

// ListParams configures the admin pledge listing.
type ListParams struct {
	NeedID int64
	Status string
	Limit  int
	Cursor string
}

// ListResult wraps returned pledges and the cursor for the next page.
type ListResult struct {
	Items  []models.Pledge `json:"items"`
	Cursor string          `json:"cursor"`
}

// Service defines pledge intake and the admin review workflow.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.Pledge, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Accept(ctx context.Context, id int64) (*models.Pledge, error)
	Decline(ctx context.Context, id int64) (*models.Pledge, error)
	Fulfill(ctx context.Context, id int64) (*models.Pledge, error)
}

type service struct {
	repo  Repository
	needs NeedFinder
	logg  *logger.Logger
}

// NewService wires pledge dependencies.
func NewService(repo Repository, needs NeedFinder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pledges repository required")
	}
	if needs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "need finder required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &service{repo: repo, needs: needs, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.Pledge, error) {
	description := strings.TrimSpace(params.Description)
	donor := strings.TrimSpace(params.DonorName)
	email := strings.TrimSpace(params.DonorEmail)

	switch {
	case params.NeedID <= 0:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "need id required")
	case description == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	case donor == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor name required")
	}

	need, err := s.needs.FindByID(ctx, params.NeedID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load need")
	}
	if need.Status != enums.NeedStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "need not found")
	}

	pledge := &models.Pledge{
		NeedID:      params.NeedID,
		Description: description,
		DonorName:   donor,
		Status:      enums.PledgeStatusOffered,
	}
	if email != "" {
		pledge.DonorEmail = &email
	}

	if err := s.repo.Create(ctx, pledge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pledge")
	}

	s.logg.Info(s.logg.WithNeedID(ctx, params.NeedID), "pledge offered")
	return pledge, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listPledgesParams{NeedID: params.NeedID, Limit: params.Limit}

	if params.Status != "" {
		status, err := enums.ParsePledgeStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		query.Status = status
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pledges")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Accept(ctx context.Context, id int64) (*models.Pledge, error) {
	return s.transition(ctx, id, enums.PledgeStatusOffered, enums.PledgeStatusAccepted)
}

func (s *service) Decline(ctx context.Context, id int64) (*models.Pledge, error) {
	return s.transition(ctx, id, enums.PledgeStatusOffered, enums.PledgeStatusDeclined)
}

func (s *service) Fulfill(ctx context.Context, id int64) (*models.Pledge, error) {
	return s.transition(ctx, id, enums.PledgeStatusAccepted, enums.PledgeStatusFulfilled)
}

func (s *service) transition(ctx context.Context, id int64, from, to enums.PledgeStatus) (*models.Pledge, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pledge id required")
	}

	affected, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pledge status")
	}

	pledge, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pledge not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload pledge")
	}
	if affected == 0 {
		return nil, pkgerrors.Newf(pkgerrors.CodeStateConflict,
			"pledge must be %s to become %s", from, to)
	}
	return pledge, nil
}
