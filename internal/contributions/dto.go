package contributions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// LineInput is one (item, quantity) tuple of a contribution. Composite kinds
// reference a product line id in ItemID; flat kinds reference the catalog
// item itself. Negative quantities retract earlier contributions.
type LineInput struct {
	ItemType     enums.ItemType
	ItemID       uuid.UUID
	Quantity     int
	ValuePerUnit *decimal.Decimal
}

// RecordInput is one logical submission action for a single rep, wave and
// optional market. Every line shares the batch id assigned on write.
type RecordInput struct {
	WaveID   uuid.UUID
	RepID    uuid.UUID
	MarketID *uuid.UUID
	Lines    []LineInput
}

// LineResult reports the cumulative ledger state after one line committed.
type LineResult struct {
	ItemType      enums.ItemType `json:"item_type"`
	ItemID        uuid.UUID      `json:"item_id"`
	Quantity      int            `json:"quantity"`
	NewCumulative int            `json:"new_cumulative"`
}

// Result is the committed outcome of a contribution request.
type Result struct {
	BatchID       uuid.UUID    `json:"batch_id"`
	Lines         []LineResult `json:"lines"`
	VisitCredited bool         `json:"visit_credited"`
}

// LedgerEntryDTO is the API shape of one progress ledger row.
type LedgerEntryDTO struct {
	WaveID        uuid.UUID      `json:"wave_id"`
	RepID         uuid.UUID      `json:"rep_id"`
	ItemType      enums.ItemType `json:"item_type"`
	ItemID        uuid.UUID      `json:"item_id"`
	CurrentNumber int            `json:"current_number"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
