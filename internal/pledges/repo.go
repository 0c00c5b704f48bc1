package pledges

import (
	"context"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// Repository exposes persistence helpers for pledges.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, pledge *models.Pledge) error
	FindByID(ctx context.Context, id int64) (*models.Pledge, error)
	List(ctx context.Context, params listPledgesParams) ([]models.Pledge, *pagination.Cursor, error)
	UpdateStatus(ctx context.Context, id int64, from, to enums.PledgeStatus) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a pledges repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listPledgesParams struct {
	NeedID int64
	Status enums.PledgeStatus
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, pledge *models.Pledge) error {
	return r.db.WithContext(ctx).Create(pledge).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Pledge, error) {
	var pledge models.Pledge
	if err := r.db.WithContext(ctx).First(&pledge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pledge, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listPledgesParams) ([]models.Pledge, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Pledge{})
	if params.NeedID > 0 {
		query = query.Where("need_id = ?", params.NeedID)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var pledges []models.Pledge
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&pledges).Error; err != nil {
		return nil, nil, err
	}

	if len(pledges) > normalized {
		next := pledges[normalized]
		pledges = pledges[:normalized]
		return pledges, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return pledges, nil, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id int64, from, to enums.PledgeStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Pledge{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
