package models

import "time"

// NeedPhoto is an uploaded image attached to a need.
type NeedPhoto struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	NeedID    int64     `gorm:"column:need_id;not null;index"`
	FileName  string    `gorm:"column:file_name;not null"`
	URL       string    `gorm:"column:url;not null"`
	SizeBytes int64     `gorm:"column:size_bytes;not null;default:0"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (NeedPhoto) TableName() string { return "need_photos" }
