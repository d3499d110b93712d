package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// Wave is a time-boxed merchandising campaign with a numeric or value goal.
// Status is never stored; it is derived from the date window or, when sell
// windows exist, from the (iso week, weekday) override.
type Wave struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string           `gorm:"column:name;not null"`
	StartsOn       time.Time        `gorm:"column:starts_on;not null"`
	EndsOn         time.Time        `gorm:"column:ends_on;not null"`
	GoalType       enums.GoalType   `gorm:"column:goal_type;not null"`
	GoalValue      *decimal.Decimal `gorm:"column:goal_value;type:numeric(12,2)"`
	GoalPercentage *decimal.Decimal `gorm:"column:goal_percentage;type:numeric(5,2)"`
	Items          []CatalogItem    `gorm:"foreignKey:WaveID;constraint:OnDelete:CASCADE"`
	SellWindows    []WaveSellWindow `gorm:"foreignKey:WaveID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// WaveSellWindow marks one (iso week, weekday) slot in which a pre-order wave
// sells. Weekday follows ISO ordering, Monday=1 through Sunday=7.
type WaveSellWindow struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WaveID  uuid.UUID `gorm:"column:wave_id;type:uuid;not null;index"`
	ISOWeek int       `gorm:"column:iso_week;not null"`
	Weekday int       `gorm:"column:weekday;not null"`
}
