package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/internal/repo"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
)

// Repository defines persistence operations over the wave/market and
// rep/market link tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AssignWaveMarkets(ctx context.Context, waveID uuid.UUID, marketIDs []uuid.UUID) error
	AssignRepMarkets(ctx context.Context, repID uuid.UUID, marketIDs []uuid.UUID) error
	CountWaveMarkets(ctx context.Context, waveID uuid.UUID) (int, error)
	CountWaveMarketsOwnedBy(ctx context.Context, waveID uuid.UUID, repIDs []uuid.UUID) (int, error)
	MarketIDsForWave(ctx context.Context, waveID uuid.UUID) ([]uuid.UUID, error)
	WaveIDsForMarkets(ctx context.Context, marketIDs []uuid.UUID) ([]uuid.UUID, error)
	MarketIDsForReps(ctx context.Context, repIDs []uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds an assignments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) AssignWaveMarkets(ctx context.Context, waveID uuid.UUID, marketIDs []uuid.UUID) error {
	if len(marketIDs) == 0 {
		return nil
	}
	rows := make([]models.WaveMarketAssignment, 0, len(marketIDs))
	for _, marketID := range marketIDs {
		rows = append(rows, models.WaveMarketAssignment{WaveID: waveID, MarketID: marketID})
	}
	return r.DB(ctx).Create(&rows).Error
}

func (r *repository) AssignRepMarkets(ctx context.Context, repID uuid.UUID, marketIDs []uuid.UUID) error {
	if len(marketIDs) == 0 {
		return nil
	}
	rows := make([]models.RepMarketAssignment, 0, len(marketIDs))
	for _, marketID := range marketIDs {
		rows = append(rows, models.RepMarketAssignment{RepID: repID, MarketID: marketID})
	}
	return r.DB(ctx).Create(&rows).Error
}

func (r *repository) CountWaveMarkets(ctx context.Context, waveID uuid.UUID) (int, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.WaveMarketAssignment{}).
		Where("wave_id = ?", waveID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repository) CountWaveMarketsOwnedBy(ctx context.Context, waveID uuid.UUID, repIDs []uuid.UUID) (int, error) {
	if len(repIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.DB(ctx).
		Model(&models.WaveMarketAssignment{}).
		Where("wave_id = ?", waveID).
		Where("market_id IN (?)", r.DB(ctx).Model(&models.RepMarketAssignment{}).
			Select("market_id").
			Where("rep_id IN ?", repIDs)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repository) MarketIDsForWave(ctx context.Context, waveID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.WaveMarketAssignment{}).
		Where("wave_id = ?", waveID).
		Pluck("market_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) WaveIDsForMarkets(ctx context.Context, marketIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(marketIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.WaveMarketAssignment{}).
		Distinct("wave_id").
		Where("market_id IN ?", marketIDs).
		Pluck("wave_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) MarketIDsForReps(ctx context.Context, repIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(repIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.RepMarketAssignment{}).
		Distinct("market_id").
		Where("rep_id IN ?", repIDs).
		Pluck("market_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
