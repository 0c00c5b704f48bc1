package models

import (
	"time"

	"github.com/upliftbridge/upliftbridge-backend/pkg/enums"
)

// Pledge is a non-monetary offer of goods or services against a need.
type Pledge struct {
	ID          int64              `gorm:"column:id;primaryKey;autoIncrement"`
	NeedID      int64              `gorm:"column:need_id;not null;index"`
	Description string             `gorm:"column:description;not null"`
	DonorName   string             `gorm:"column:donor_name;not null"`
	DonorEmail  *string            `gorm:"column:donor_email"`
	Status      enums.PledgeStatus `gorm:"column:status;type:text;not null;default:'offered'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pledge) TableName() string { return "pledges" }
