package needs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// Repository exposes persistence helpers for needs and their photos.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, need *models.Need) error
	FindByID(ctx context.Context, id int64) (*models.Need, error)
	FindByIDWithAttachments(ctx context.Context, id int64) (*models.Need, error)
	List(ctx context.Context, params listNeedsParams) ([]models.Need, *pagination.Cursor, error)
	UpdateReview(ctx context.Context, id int64, from, to enums.NeedStatus, reviewer string, reason *string, now time.Time) (int64, error)
	CountPhotos(ctx context.Context, needID int64) (int64, error)
	CreatePhoto(ctx context.Context, photo *models.NeedPhoto) error
	FindPhoto(ctx context.Context, needID, photoID int64) (*models.NeedPhoto, error)
	DeletePhoto(ctx context.Context, needID, photoID int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a needs repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNeedsParams struct {
	Status   enums.NeedStatus
	Category enums.NeedCategory
	Limit    int
	Cursor   *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, need *models.Need) error {
	return r.db.WithContext(ctx).Create(need).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Need, error) {
	var need models.Need
	if err := r.db.WithContext(ctx).First(&need, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &need, nil
}

func (r *repositoryImpl) FindByIDWithAttachments(ctx context.Context, id int64) (*models.Need, error) {
	var need models.Need
	err := r.db.WithContext(ctx).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Updates", "visible = ?", true).
		First(&need, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &need, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listNeedsParams) ([]models.Need, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Need{})
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var needs []models.Need
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&needs).Error; err != nil {
		return nil, nil, err
	}

	if len(needs) > normalized {
		next := needs[normalized]
		needs = needs[:normalized]
		return needs, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return needs, nil, nil
}

func (r *repositoryImpl) UpdateReview(ctx context.Context, id int64, from, to enums.NeedStatus, reviewer string, reason *string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Need{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":           to,
			"reviewed_by":      reviewer,
			"reviewed_at":      now,
			"rejection_reason": reason,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) CountPhotos(ctx context.Context, needID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.NeedPhoto{}).
		Where("need_id = ?", needID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreatePhoto(ctx context.Context, photo *models.NeedPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *repositoryImpl) FindPhoto(ctx context.Context, needID, photoID int64) (*models.NeedPhoto, error) {
	var photo models.NeedPhoto
	if err := r.db.WithContext(ctx).First(&photo, "id = ? AND need_id = ?", photoID, needID).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *repositoryImpl) DeletePhoto(ctx context.Context, needID, photoID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND need_id = ?", photoID, needID).
		Delete(&models.NeedPhoto{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
