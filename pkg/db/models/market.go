package models

import (
	"time"

	"github.com/google/uuid"
)

// Market is a retail location that reps visit during waves.
type Market struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string     `gorm:"column:name;not null"`
	ChainLabel string     `gorm:"column:chain_label;not null"`
	City       *string    `gorm:"column:city"`
	VisitCount int        `gorm:"column:visit_count;not null;default:0"`
	LastVisit  *time.Time `gorm:"column:last_visit"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
