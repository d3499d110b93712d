package markets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/internal/repo"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
)

// Repository defines persistence operations over markets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, marketID uuid.UUID) (*models.Market, error)
	FindByIDs(ctx context.Context, marketIDs []uuid.UUID) ([]models.Market, error)
	NamesByIDs(ctx context.Context, marketIDs []uuid.UUID) (map[uuid.UUID]string, error)
	MarketIDsForGroup(ctx context.Context, group Grouping) ([]uuid.UUID, error)
	CreditVisit(ctx context.Context, marketID uuid.UUID, now time.Time) (bool, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a markets repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindByID(ctx context.Context, marketID uuid.UUID) (*models.Market, error) {
	var market models.Market
	err := r.DB(ctx).
		Where("id = ?", marketID).
		First(&market).Error
	if err != nil {
		return nil, err
	}
	return &market, nil
}

func (r *repository) FindByIDs(ctx context.Context, marketIDs []uuid.UUID) ([]models.Market, error) {
	if len(marketIDs) == 0 {
		return nil, nil
	}
	var markets []models.Market
	err := r.DB(ctx).
		Where("id IN ?", marketIDs).
		Find(&markets).Error
	if err != nil {
		return nil, err
	}
	return markets, nil
}

func (r *repository) NamesByIDs(ctx context.Context, marketIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	markets, err := r.FindByIDs(ctx, marketIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(markets))
	for _, market := range markets {
		names[market.ID] = market.Name
	}
	return names, nil
}

// MarketIDsForGroup resolves the markets belonging to a dashboard grouping.
// The label mapping lives in Go, so labels are filtered in memory; market
// counts are small (hundreds, not millions).
func (r *repository) MarketIDsForGroup(ctx context.Context, group Grouping) ([]uuid.UUID, error) {
	var rows []struct {
		ID         uuid.UUID
		ChainLabel string
	}
	err := r.DB(ctx).
		Model(&models.Market{}).
		Select("id", "chain_label").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, row := range rows {
		if GroupForLabel(row.ChainLabel) == group {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// CreditVisit bumps the market's visit counter at most once per calendar day.
// The guard runs inside the UPDATE itself, so concurrent submissions on the
// same day collapse to a single increment. Returns whether a row was updated.
func (r *repository) CreditVisit(ctx context.Context, marketID uuid.UUID, now time.Time) (bool, error) {
	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	res := r.DB(ctx).
		Model(&models.Market{}).
		Where("id = ?", marketID).
		Where("last_visit IS NULL OR last_visit < ?", startOfDay).
		Updates(map[string]any{
			"visit_count": gorm.Expr("visit_count + 1"),
			"last_visit":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
