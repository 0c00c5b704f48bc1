package stories

import (
	"context"

	"gorm.io/gorm"

	"github.com/upliftbridge/upliftbridge-backend/pkg/db/models"
	"github.com/upliftbridge/upliftbridge-backend/pkg/pagination"
)

// Repository exposes persistence helpers for success stories.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, story *models.Story) error
	FindByID(ctx context.Context, id int64) (*models.Story, error)
	List(ctx context.Context, params listStoriesParams) ([]models.Story, *pagination.Cursor, error)
	Update(ctx context.Context, story *models.Story) error
	SetPublished(ctx context.Context, id int64, published bool) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a stories repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listStoriesParams struct {
	PublishedOnly bool
	Limit         int
	Cursor        *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id int64) (*models.Story, error) {
	var story models.Story
	if err := r.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &story, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listStoriesParams) ([]models.Story, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Story{})
	if params.PublishedOnly {
		query = query.Where("published = ?", true)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var stories []models.Story
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&stories).Error; err != nil {
		return nil, nil, err
	}

	if len(stories) > normalized {
		next := stories[normalized]
		stories = stories[:normalized]
		return stories, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return stories, nil, nil
}

func (r *repositoryImpl) Update(ctx context.Context, story *models.Story) error {
	return r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", story.ID).
		Updates(map[string]any{
			"title":        story.Title,
			"body":         story.Body,
			"hero_url":     story.HeroURL,
			"gallery_urls": story.GalleryURLs,
		}).Error
}

func (r *repositoryImpl) SetPublished(ctx context.Context, id int64, published bool) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("id = ?", id).
		Update("published", published)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Story{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
