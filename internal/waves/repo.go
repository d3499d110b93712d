package waves

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/internal/repo"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
)

// Repository defines persistence operations for waves and their catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateWave(ctx context.Context, wave *models.Wave) (*models.Wave, error)
	FindWaveByID(ctx context.Context, waveID uuid.UUID) (*models.Wave, error)
	FindWavesByIDs(ctx context.Context, waveIDs []uuid.UUID) ([]models.Wave, error)
	ListWaves(ctx context.Context) ([]models.Wave, error)
	DeleteWave(ctx context.Context, waveID uuid.UUID) error
	WaveExists(ctx context.Context, waveID uuid.UUID) (bool, error)
	FindFlatItem(ctx context.Context, waveID, itemID uuid.UUID, kind enums.ItemType) (*models.CatalogItem, error)
	FindWaveProductLine(ctx context.Context, waveID, lineID uuid.UUID) (*models.ProductLine, error)
	FindItemsByWave(ctx context.Context, waveID uuid.UUID) ([]models.CatalogItem, error)
	FindItemsByWaves(ctx context.Context, waveIDs []uuid.UUID) ([]models.CatalogItem, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a waves repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) CreateWave(ctx context.Context, wave *models.Wave) (*models.Wave, error) {
	if err := r.DB(ctx).Create(wave).Error; err != nil {
		return nil, err
	}
	return wave, nil
}

func (r *repository) FindWaveByID(ctx context.Context, waveID uuid.UUID) (*models.Wave, error) {
	var wave models.Wave
	err := r.DB(ctx).
		Preload("Items.ProductLines").
		Preload("SellWindows").
		Where("id = ?", waveID).
		First(&wave).Error
	if err != nil {
		return nil, err
	}
	return &wave, nil
}

func (r *repository) FindWavesByIDs(ctx context.Context, waveIDs []uuid.UUID) ([]models.Wave, error) {
	if len(waveIDs) == 0 {
		return nil, nil
	}
	var waves []models.Wave
	err := r.DB(ctx).
		Preload("SellWindows").
		Where("id IN ?", waveIDs).
		Order("starts_on DESC").
		Find(&waves).Error
	if err != nil {
		return nil, err
	}
	return waves, nil
}

func (r *repository) ListWaves(ctx context.Context) ([]models.Wave, error) {
	var waves []models.Wave
	err := r.DB(ctx).
		Preload("SellWindows").
		Order("starts_on DESC").
		Find(&waves).Error
	if err != nil {
		return nil, err
	}
	return waves, nil
}

// DeleteWave removes the wave and cascades to its catalog. Submission records
// survive; their value recovery runs through the activity resolver.
func (r *repository) DeleteWave(ctx context.Context, waveID uuid.UUID) error {
	return r.DB(ctx).
		Where("id = ?", waveID).
		Delete(&models.Wave{}).Error
}

func (r *repository) WaveExists(ctx context.Context, waveID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Wave{}).
		Where("id = ?", waveID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindFlatItem(ctx context.Context, waveID, itemID uuid.UUID, kind enums.ItemType) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.DB(ctx).
		Where("id = ? AND wave_id = ? AND kind = ?", itemID, waveID, kind).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindWaveProductLine(ctx context.Context, waveID, lineID uuid.UUID) (*models.ProductLine, error) {
	var line models.ProductLine
	err := r.DB(ctx).
		Where("id = ?", lineID).
		Where("catalog_item_id IN (?)", r.DB(ctx).Model(&models.CatalogItem{}).
			Select("id").
			Where("wave_id = ?", waveID)).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindItemsByWave(ctx context.Context, waveID uuid.UUID) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	err := r.DB(ctx).
		Preload("ProductLines").
		Where("wave_id = ?", waveID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItemsByWaves(ctx context.Context, waveIDs []uuid.UUID) ([]models.CatalogItem, error) {
	if len(waveIDs) == 0 {
		return nil, nil
	}
	var items []models.CatalogItem
	err := r.DB(ctx).
		Preload("ProductLines").
		Where("wave_id IN ?", waveIDs).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
