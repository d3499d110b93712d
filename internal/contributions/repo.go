package contributions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/merchpilot/fieldops-backend/internal/repo"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	"github.com/merchpilot/fieldops-backend/pkg/pagination"
)

// LedgerKey identifies one cumulative progress row.
type LedgerKey struct {
	WaveID   uuid.UUID
	RepID    uuid.UUID
	ItemType enums.ItemType
	ItemID   uuid.UUID
}

// Repository owns the two write targets of the contribution path: the
// progress ledger and the append-only submission log. No other package may
// write either table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	AddToLedger(ctx context.Context, key LedgerKey, quantity int) (int, error)
	AppendSubmission(ctx context.Context, record *models.SubmissionRecord) error
	ListLedger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]models.ProgressLedgerEntry, error)
	LedgerForWaves(ctx context.Context, waveIDs []uuid.UUID, repIDs []uuid.UUID) ([]models.ProgressLedgerEntry, error)
	ListSubmissions(ctx context.Context, waveID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.SubmissionRecord, *pagination.Cursor, error)
	SumSubmissions(ctx context.Context, key LedgerKey) (int, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a contributions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// AddToLedger applies one cumulative increment as a single conflict-target
// upsert, so concurrent writers on the same key serialize inside the database
// instead of racing a read-modify-write. Returns the new cumulative quantity.
func (r *repository) AddToLedger(ctx context.Context, key LedgerKey, quantity int) (int, error) {
	entry := models.ProgressLedgerEntry{
		WaveID:        key.WaveID,
		RepID:         key.RepID,
		ItemType:      key.ItemType,
		ItemID:        key.ItemID,
		CurrentNumber: quantity,
	}
	err := r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "wave_id"},
				{Name: "rep_id"},
				{Name: "item_type"},
				{Name: "item_id"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"current_number": gorm.Expr("progress_ledger_entries.current_number + excluded.current_number"),
			}),
		}).
		Create(&entry).Error
	if err != nil {
		return 0, err
	}

	var current int
	err = r.DB(ctx).
		Model(&models.ProgressLedgerEntry{}).
		Where("wave_id = ? AND rep_id = ? AND item_type = ? AND item_id = ?",
			key.WaveID, key.RepID, key.ItemType, key.ItemID).
		Select("current_number").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current, nil
}

func (r *repository) AppendSubmission(ctx context.Context, record *models.SubmissionRecord) error {
	return r.DB(ctx).Create(record).Error
}

func (r *repository) ListLedger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]models.ProgressLedgerEntry, error) {
	query := r.DB(ctx).
		Model(&models.ProgressLedgerEntry{}).
		Where("wave_id = ?", waveID)
	if repID != nil {
		query = query.Where("rep_id = ?", *repID)
	}
	var entries []models.ProgressLedgerEntry
	if err := query.Order("item_type ASC, item_id ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// LedgerForWaves loads ledger rows across waves for dashboard aggregation.
// A non-nil empty repIDs slice matches nothing by construction.
func (r *repository) LedgerForWaves(ctx context.Context, waveIDs []uuid.UUID, repIDs []uuid.UUID) ([]models.ProgressLedgerEntry, error) {
	if len(waveIDs) == 0 {
		return nil, nil
	}
	query := r.DB(ctx).
		Model(&models.ProgressLedgerEntry{}).
		Where("wave_id IN ?", waveIDs)
	if repIDs != nil {
		if len(repIDs) == 0 {
			return nil, nil
		}
		query = query.Where("rep_id IN ?", repIDs)
	}
	var entries []models.ProgressLedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListSubmissions(ctx context.Context, waveID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.SubmissionRecord, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.DB(ctx).
		Model(&models.SubmissionRecord{}).
		Where("wave_id = ?", waveID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var records []models.SubmissionRecord
	if err := query.Order("created_at DESC, id DESC").Limit(buffered).Find(&records).Error; err != nil {
		return nil, nil, err
	}

	if len(records) > normalized {
		records = records[:normalized]
		// anchor on the last returned row; the next query resumes strictly after it
		last := records[normalized-1]
		return records, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return records, nil, nil
}

func (r *repository) SumSubmissions(ctx context.Context, key LedgerKey) (int, error) {
	var total *int
	err := r.DB(ctx).
		Model(&models.SubmissionRecord{}).
		Where("wave_id = ? AND rep_id = ? AND item_type = ? AND item_id = ?",
			key.WaveID, key.RepID, key.ItemType, key.ItemID).
		Select("SUM(quantity)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
