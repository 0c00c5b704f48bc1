package models

import "time"

// NeedUpdate is a progress or thank-you post published under a need.
type NeedUpdate struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	NeedID    int64     `gorm:"column:need_id;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	Body      string    `gorm:"column:body;not null"`
	Visible   bool      `gorm:"column:visible;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NeedUpdate) TableName() string { return "need_updates" }
