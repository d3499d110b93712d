package dashboard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/internal/goals"
	"github.com/merchpilot/fieldops-backend/internal/markets"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// Filters narrow dashboard aggregates. Reps defaults to the unfiltered
// selection; an explicitly empty selection zeroes every derived figure.
type Filters struct {
	Reps      goals.RepFilter
	From      *time.Time
	To        *time.Time
	ItemTypes []enums.ItemType
}

func (f Filters) wantsItemType(kind enums.ItemType) bool {
	if len(f.ItemTypes) == 0 {
		return true
	}
	for _, candidate := range f.ItemTypes {
		if candidate == kind {
			return true
		}
	}
	return false
}

func (f Filters) coversWave(startsOn, endsOn time.Time) bool {
	if f.From != nil && endsOn.Before(*f.From) {
		return false
	}
	if f.To != nil && startsOn.After(*f.To) {
		return false
	}
	return true
}

// ChainQuery selects one retail-chain grouping plus common filters.
type ChainQuery struct {
	Group   markets.Grouping
	Filters Filters
}

// WaveQuery selects either one wave or the active/recent set.
type WaveQuery struct {
	WaveID  *uuid.UUID
	Filters Filters
}

// Summary is one progress aggregate. Units cover count-based item targets;
// values cover monetary wave goals. Absent upstream data yields zeros.
type Summary struct {
	TotalMarkets        int             `json:"total_markets"`
	MarketsWithProgress int             `json:"markets_with_progress"`
	CurrentUnits        int             `json:"current_units"`
	GoalUnits           int             `json:"goal_units"`
	CurrentValue        decimal.Decimal `json:"current_value"`
	GoalValue           decimal.Decimal `json:"goal_value"`
}

// WaveSummary is the dashboard card of one wave.
type WaveSummary struct {
	WaveID   uuid.UUID        `json:"wave_id"`
	Name     string           `json:"name"`
	Status   enums.WaveStatus `json:"status"`
	StartsOn time.Time        `json:"starts_on"`
	EndsOn   time.Time        `json:"ends_on"`
	Summary  Summary          `json:"summary"`
}
