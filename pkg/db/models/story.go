package models

import (
	"time"

	"github.com/lib/pq"
)

// Story is an editorial success write-up shown on the public site.
type Story struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Title       string         `gorm:"column:title;not null"`
	Body        string         `gorm:"column:body;not null"`
	HeroURL     *string        `gorm:"column:hero_url"`
	GalleryURLs pq.StringArray `gorm:"column:gallery_urls;type:text[]"`
	Published   bool           `gorm:"column:published;not null;default:false"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (Story) TableName() string { return "stories" }
