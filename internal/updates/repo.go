package updates

import (
	"context"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
)

// Repository exposes persistence helpers for need updates.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, update *models.NeedUpdate) error
	FindByID(ctx context.Context, needID, updateID int64) (*models.NeedUpdate, error)
	ListByNeed(ctx context.Context, needID int64, visibleOnly bool) ([]models.NeedUpdate, error)
	SetVisibility(ctx context.Context, needID, updateID int64, visible bool) (int64, error)
	Delete(ctx context.Context, needID, updateID int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an updates repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, update *models.NeedUpdate) error {
	return r.db.WithContext(ctx).Create(update).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, needID, updateID int64) (*models.NeedUpdate, error) {
	var update models.NeedUpdate
	if err := r.db.WithContext(ctx).First(&update, "id = ? AND need_id = ?", updateID, needID).Error; err != nil {
		return nil, err
	}
	return &update, nil
}

func (r *repositoryImpl) ListByNeed(ctx context.Context, needID int64, visibleOnly bool) ([]models.NeedUpdate, error) {
	query := r.db.WithContext(ctx).Where("need_id = ?", needID)
	if visibleOnly {
		query = query.Where("visible = ?", true)
	}

	var updates []models.NeedUpdate
	if err := query.Order("created_at DESC, id DESC").Find(&updates).Error; err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repositoryImpl) SetVisibility(ctx context.Context, needID, updateID int64, visible bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NeedUpdate{}).
		Where("id = ? AND need_id = ?", updateID, needID).
		Update("visible", visible)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, needID, updateID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND need_id = ?", updateID, needID).
		Delete(&models.NeedUpdate{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
