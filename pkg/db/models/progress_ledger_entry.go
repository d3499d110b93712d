package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// ProgressLedgerEntry is the running cumulative quantity for one
// (wave, rep, item_type, item_id) key. It is derived state: only the
// contributions write path may touch it, and CurrentNumber must equal the sum
// of matching SubmissionRecord quantities at all times.
type ProgressLedgerEntry struct {
	WaveID        uuid.UUID      `gorm:"column:wave_id;type:uuid;primaryKey"`
	RepID         uuid.UUID      `gorm:"column:rep_id;type:uuid;primaryKey"`
	ItemType      enums.ItemType `gorm:"column:item_type;primaryKey"`
	ItemID        uuid.UUID      `gorm:"column:item_id;type:uuid;primaryKey"`
	CurrentNumber int            `gorm:"column:current_number;not null;default:0"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
