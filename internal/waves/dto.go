package waves

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// CreateWaveInput carries everything needed to register a campaign.
type CreateWaveInput struct {
	Name           string
	StartsOn       time.Time
	EndsOn         time.Time
	GoalType       enums.GoalType
	GoalValue      *decimal.Decimal
	GoalPercentage *decimal.Decimal
	MarketIDs      []uuid.UUID
	Items          []CreateItemInput
	SellWindows    []SellWindowInput
}

// CreateItemInput describes one catalog item of a new wave.
type CreateItemInput struct {
	Kind         enums.ItemType
	Name         string
	TargetNumber int
	ItemValue    *decimal.Decimal
	Size         *string
	ProductLines []ProductLineInput
}

// ProductLineInput describes one product row of a composite item.
type ProductLineInput struct {
	Name         string
	ValuePerUnit decimal.Decimal
	UnitCount    int
	ExternalCode *string
}

// SellWindowInput is one (iso week, weekday) selling slot.
type SellWindowInput struct {
	ISOWeek int
	Weekday int
}

// SellWindowDTO is the API shape of one selling slot.
type SellWindowDTO struct {
	ISOWeek int `json:"iso_week"`
	Weekday int `json:"weekday"`
}

// WaveDTO is the API shape of a wave including its derived status.
type WaveDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	StartsOn       time.Time        `json:"starts_on"`
	EndsOn         time.Time        `json:"ends_on"`
	Status         enums.WaveStatus `json:"status"`
	GoalType       enums.GoalType   `json:"goal_type"`
	GoalValue      *decimal.Decimal `json:"goal_value,omitempty"`
	GoalPercentage *decimal.Decimal `json:"goal_percentage,omitempty"`
	Items          []ItemDTO        `json:"items,omitempty"`
	SellWindows    []SellWindowDTO  `json:"sell_windows,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ItemDTO is the API shape of a catalog item.
type ItemDTO struct {
	ID           uuid.UUID        `json:"id"`
	Kind         enums.ItemType   `json:"kind"`
	Name         string           `json:"name"`
	TargetNumber int              `json:"target_number"`
	ItemValue    *decimal.Decimal `json:"item_value,omitempty"`
	Size         *string          `json:"size,omitempty"`
	ProductLines []ProductLineDTO `json:"product_lines,omitempty"`
}

// ProductLineDTO is the API shape of a composite product line.
type ProductLineDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	ValuePerUnit decimal.Decimal `json:"value_per_unit"`
	UnitCount    int             `json:"unit_count"`
	ExternalCode *string         `json:"external_code,omitempty"`
}
