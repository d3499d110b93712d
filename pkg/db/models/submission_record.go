package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// SubmissionRecord is one immutable, append-only contribution event. Rows are
// never updated; the progress ledger must always reconcile with their sum.
// ValuePerUnit snapshots product-line pricing at submission time so historical
// value survives catalog edits. BatchID groups every line submitted in one
// logical action.
type SubmissionRecord struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WaveID       uuid.UUID        `gorm:"column:wave_id;type:uuid;not null;index"`
	RepID        uuid.UUID        `gorm:"column:rep_id;type:uuid;not null;index"`
	MarketID     *uuid.UUID       `gorm:"column:market_id;type:uuid"`
	BatchID      uuid.UUID        `gorm:"column:batch_id;type:uuid;not null;index"`
	ItemType     enums.ItemType   `gorm:"column:item_type;not null"`
	ItemID       uuid.UUID        `gorm:"column:item_id;type:uuid;not null"`
	Quantity     int              `gorm:"column:quantity;not null"`
	ValuePerUnit *decimal.Decimal `gorm:"column:value_per_unit;type:numeric(12,2)"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}
