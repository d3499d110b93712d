package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merchpilot/fieldops-backend/internal/goals"
	"github.com/merchpilot/fieldops-backend/internal/markets"
	"github.com/merchpilot/fieldops-backend/internal/waves"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
)

type marketResolver interface {
	MarketIDsForGroup(ctx context.Context, group markets.Grouping) ([]uuid.UUID, error)
}

type assignmentResolver interface {
	WaveIDsForMarkets(ctx context.Context, marketIDs []uuid.UUID) ([]uuid.UUID, error)
	MarketIDsForWave(ctx context.Context, waveID uuid.UUID) ([]uuid.UUID, error)
	CountWaveMarkets(ctx context.Context, waveID uuid.UUID) (int, error)
}

type waveCatalog interface {
	FindWavesByIDs(ctx context.Context, waveIDs []uuid.UUID) ([]models.Wave, error)
	ListWaves(ctx context.Context) ([]models.Wave, error)
	FindItemsByWaves(ctx context.Context, waveIDs []uuid.UUID) ([]models.CatalogItem, error)
}

type ledgerReader interface {
	LedgerForWaves(ctx context.Context, waveIDs []uuid.UUID, repIDs []uuid.UUID) ([]models.ProgressLedgerEntry, error)
}

// Service renders chain-level and wave-level progress summaries. Reads are
// deliberately forgiving: upstream failures are logged and yield zeroed
// aggregates, because the dashboard must stay renderable.
type Service interface {
	ChainSummary(ctx context.Context, query ChainQuery) (Summary, error)
	WaveSummaries(ctx context.Context, query WaveQuery) ([]WaveSummary, error)
}

type service struct {
	markets     marketResolver
	assignments assignmentResolver
	waves       waveCatalog
	ledger      ledgerReader
	goals       goals.Service
	logg        *logger.Logger
	recentGrace time.Duration
	now         func() time.Time
}

// NewService builds the dashboard aggregator. recentGrace controls how long a
// finished wave keeps its dashboard card.
func NewService(
	marketsRepo marketResolver,
	assignmentsRepo assignmentResolver,
	wavesRepo waveCatalog,
	ledger ledgerReader,
	goalSvc goals.Service,
	logg *logger.Logger,
	recentGrace time.Duration,
) (Service, error) {
	if marketsRepo == nil {
		return nil, fmt.Errorf("markets resolver required")
	}
	if assignmentsRepo == nil {
		return nil, fmt.Errorf("assignments resolver required")
	}
	if wavesRepo == nil {
		return nil, fmt.Errorf("waves catalog required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if goalSvc == nil {
		return nil, fmt.Errorf("goals service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if recentGrace <= 0 {
		recentGrace = 14 * 24 * time.Hour
	}
	return &service{
		markets:     marketsRepo,
		assignments: assignmentsRepo,
		waves:       wavesRepo,
		ledger:      ledger,
		goals:       goalSvc,
		logg:        logg,
		recentGrace: recentGrace,
		now:         time.Now,
	}, nil
}

func (s *service) ChainSummary(ctx context.Context, query ChainQuery) (Summary, error) {
	marketIDs, err := s.markets.MarketIDsForGroup(ctx, query.Group)
	if err != nil {
		return s.zeroed(ctx, "chain markets", err), nil
	}

	summary := Summary{
		TotalMarkets: len(marketIDs),
		CurrentValue: decimal.Zero,
		GoalValue:    decimal.Zero,
	}
	if len(marketIDs) == 0 {
		return summary, nil
	}

	waveIDs, err := s.assignments.WaveIDsForMarkets(ctx, marketIDs)
	if err != nil {
		return s.zeroed(ctx, "chain waves", err), nil
	}

	chainMarkets := make(map[uuid.UUID]bool, len(marketIDs))
	for _, id := range marketIDs {
		chainMarkets[id] = true
	}

	aggregate, err := s.aggregate(ctx, waveIDs, query.Filters, chainMarkets)
	if err != nil {
		return s.zeroed(ctx, "chain aggregate", err), nil
	}
	aggregate.TotalMarkets = summary.TotalMarkets
	return aggregate, nil
}

func (s *service) WaveSummaries(ctx context.Context, query WaveQuery) ([]WaveSummary, error) {
	var candidates []models.Wave
	var err error
	if query.WaveID != nil {
		candidates, err = s.waves.FindWavesByIDs(ctx, []uuid.UUID{*query.WaveID})
	} else {
		candidates, err = s.waves.ListWaves(ctx)
	}
	if err != nil {
		s.logg.Error(ctx, "dashboard wave load failed", err)
		return []WaveSummary{}, nil
	}

	now := s.now()
	summaries := make([]WaveSummary, 0, len(candidates))
	for _, wave := range candidates {
		status := waves.StatusFor(wave, now)
		if query.WaveID == nil && !s.showOnDashboard(wave, status, now) {
			continue
		}
		if !query.Filters.coversWave(wave.StartsOn, wave.EndsOn) {
			continue
		}

		aggregate, err := s.aggregate(ctx, []uuid.UUID{wave.ID}, query.Filters, nil)
		if err != nil {
			aggregate = s.zeroed(ctx, "wave aggregate", err)
		}
		if total, err := s.assignments.CountWaveMarkets(ctx, wave.ID); err == nil {
			aggregate.TotalMarkets = total
		}

		summaries = append(summaries, WaveSummary{
			WaveID:   wave.ID,
			Name:     wave.Name,
			Status:   status,
			StartsOn: wave.StartsOn,
			EndsOn:   wave.EndsOn,
			Summary:  aggregate,
		})
	}
	return summaries, nil
}

// showOnDashboard keeps active waves plus those recently finished.
func (s *service) showOnDashboard(wave models.Wave, status enums.WaveStatus, now time.Time) bool {
	switch status {
	case enums.WaveStatusActive, enums.WaveStatusUpcoming:
		return true
	case enums.WaveStatusFinished:
		return now.Sub(wave.EndsOn) <= s.recentGrace
	default:
		return false
	}
}

// aggregate walks waves → items → ledger and folds everything into one
// summary. restrictMarkets, when non-nil, limits the markets-with-progress
// walk to that set (the chain view).
func (s *service) aggregate(ctx context.Context, waveIDs []uuid.UUID, filters Filters, restrictMarkets map[uuid.UUID]bool) (Summary, error) {
	summary := Summary{CurrentValue: decimal.Zero, GoalValue: decimal.Zero}
	if len(waveIDs) == 0 {
		return summary, nil
	}

	waveRows, err := s.waves.FindWavesByIDs(ctx, waveIDs)
	if err != nil {
		return summary, err
	}
	var kept []models.Wave
	for _, wave := range waveRows {
		if filters.coversWave(wave.StartsOn, wave.EndsOn) {
			kept = append(kept, wave)
		}
	}
	if len(kept) == 0 {
		return summary, nil
	}

	keptIDs := make([]uuid.UUID, 0, len(kept))
	for _, wave := range kept {
		keptIDs = append(keptIDs, wave.ID)
	}

	items, err := s.waves.FindItemsByWaves(ctx, keptIDs)
	if err != nil {
		return summary, err
	}
	unitValues, itemKinds, targetsByWave := indexItems(items, filters)

	entries, err := s.ledger.LedgerForWaves(ctx, keptIDs, filters.Reps.IDs())
	if err != nil {
		return summary, err
	}
	if filters.Reps.Empty() {
		// sentinel: everything stays zero
		return summary, nil
	}

	progressByWave := make(map[uuid.UUID]bool)
	for _, entry := range entries {
		kind, known := itemKinds[entry.ItemID]
		if !known || !filters.wantsItemType(kind) {
			continue
		}
		summary.CurrentUnits += entry.CurrentNumber
		if value, ok := unitValues[entry.ItemID]; ok {
			summary.CurrentValue = summary.CurrentValue.Add(
				decimal.NewFromInt(int64(entry.CurrentNumber)).Mul(value))
		}
		progressByWave[entry.WaveID] = true
	}
	summary.CurrentValue = summary.CurrentValue.Round(2)

	for _, wave := range kept {
		share, err := s.goals.Share(ctx, wave.ID, filters.Reps)
		if err != nil {
			return summary, err
		}
		summary.GoalUnits += goals.ProportionalCount(targetsByWave[wave.ID], share.Owned, share.Total)
		if wave.GoalValue != nil {
			summary.GoalValue = summary.GoalValue.Add(
				goals.ProportionalValue(*wave.GoalValue, share.Owned, share.Total))
		}
	}

	summary.MarketsWithProgress = s.countMarketsWithProgress(ctx, progressByWave, restrictMarkets)
	return summary, nil
}

// countMarketsWithProgress walks ledger → wave → assigned markets.
func (s *service) countMarketsWithProgress(ctx context.Context, progressByWave map[uuid.UUID]bool, restrict map[uuid.UUID]bool) int {
	seen := make(map[uuid.UUID]bool)
	for waveID := range progressByWave {
		ids, err := s.assignments.MarketIDsForWave(ctx, waveID)
		if err != nil {
			s.logg.Warn(ctx, "markets-with-progress walk failed")
			continue
		}
		for _, id := range ids {
			if restrict != nil && !restrict[id] {
				continue
			}
			seen[id] = true
		}
	}
	return len(seen)
}

// indexItems maps item/line ids to unit values and kinds, and sums unit
// targets per wave for items passing the item-type filter.
func indexItems(items []models.CatalogItem, filters Filters) (map[uuid.UUID]decimal.Decimal, map[uuid.UUID]enums.ItemType, map[uuid.UUID]int) {
	unitValues := make(map[uuid.UUID]decimal.Decimal)
	kinds := make(map[uuid.UUID]enums.ItemType)
	targets := make(map[uuid.UUID]int)

	for _, item := range items {
		if item.Kind.IsComposite() {
			for _, line := range item.ProductLines {
				unitValues[line.ID] = line.ValuePerUnit
				kinds[line.ID] = item.Kind
			}
		} else {
			kinds[item.ID] = item.Kind
			if item.ItemValue != nil {
				unitValues[item.ID] = *item.ItemValue
			}
		}
		if filters.wantsItemType(item.Kind) {
			targets[item.WaveID] += item.TargetNumber
		}
	}
	return unitValues, kinds, targets
}

func (s *service) zeroed(ctx context.Context, stage string, err error) Summary {
	ctx = s.logg.WithField(ctx, "stage", stage)
	s.logg.Error(ctx, "dashboard read degraded", err)
	return Summary{CurrentValue: decimal.Zero, GoalValue: decimal.Zero}
}
