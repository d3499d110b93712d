package contributions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
	"github.com/merchpilot/fieldops-backend/pkg/logger"
	"github.com/merchpilot/fieldops-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type catalogLookup interface {
	WaveExists(ctx context.Context, waveID uuid.UUID) (bool, error)
	FindFlatItem(ctx context.Context, waveID, itemID uuid.UUID, kind enums.ItemType) (*models.CatalogItem, error)
	FindWaveProductLine(ctx context.Context, waveID, lineID uuid.UUID) (*models.ProductLine, error)
}

type visitCrediter interface {
	CreditVisit(ctx context.Context, marketID uuid.UUID, now time.Time) (bool, error)
}

// Service is the only write entry point for the progress ledger and the
// submission log.
type Service interface {
	Record(ctx context.Context, input RecordInput) (*Result, error)
	Ledger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]LedgerEntryDTO, error)
}

type service struct {
	repo          Repository
	catalog       catalogLookup
	visits        visitCrediter
	tx            txRunner
	logg          *logger.Logger
	metrics       *metrics.ContributionMetrics
	maxBatchItems int
	now           func() time.Time
}

// NewService builds the contributions service.
func NewService(
	repo Repository,
	catalog catalogLookup,
	visits visitCrediter,
	tx txRunner,
	logg *logger.Logger,
	contributionMetrics *metrics.ContributionMetrics,
	maxBatchItems int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contributions repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if visits == nil {
		return nil, fmt.Errorf("visit crediter required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxBatchItems <= 0 {
		maxBatchItems = 50
	}
	return &service{
		repo:          repo,
		catalog:       catalog,
		visits:        visits,
		tx:            tx,
		logg:          logg,
		metrics:       contributionMetrics,
		maxBatchItems: maxBatchItems,
		now:           time.Now,
	}, nil
}

// resolvedLine carries a validated line plus its value snapshot.
type resolvedLine struct {
	input    LineInput
	snapshot *decimal.Decimal
}

func (s *service) Record(ctx context.Context, input RecordInput) (*Result, error) {
	start := s.now()
	kind := "single"
	if len(input.Lines) > 1 {
		kind = "batch"
	}

	if err := s.validateShape(input); err != nil {
		s.metrics.IncRejected("validation")
		return nil, err
	}
	resolved, err := s.resolveCatalog(ctx, input)
	if err != nil {
		s.metrics.IncRejected("not_found")
		return nil, err
	}

	batchID := uuid.New()
	now := s.now()
	result := &Result{BatchID: batchID}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, line := range resolved {
			key := LedgerKey{
				WaveID:   input.WaveID,
				RepID:    input.RepID,
				ItemType: line.input.ItemType,
				ItemID:   line.input.ItemID,
			}
			cumulative, err := repo.AddToLedger(ctx, key, line.input.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ledger upsert")
			}
			record := &models.SubmissionRecord{
				ID:           uuid.New(),
				WaveID:       input.WaveID,
				RepID:        input.RepID,
				MarketID:     input.MarketID,
				BatchID:      batchID,
				ItemType:     line.input.ItemType,
				ItemID:       line.input.ItemID,
				Quantity:     line.input.Quantity,
				ValuePerUnit: line.snapshot,
				CreatedAt:    now,
			}
			if err := repo.AppendSubmission(ctx, record); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submission append")
			}
			result.Lines = append(result.Lines, LineResult{
				ItemType:      line.input.ItemType,
				ItemID:        line.input.ItemID,
				Quantity:      line.input.Quantity,
				NewCumulative: cumulative,
			})
		}
		return nil
	})
	if err != nil {
		s.metrics.IncRejected("write_failure")
		return nil, err
	}

	for _, line := range result.Lines {
		s.metrics.IncAccepted(line.ItemType.String())
	}
	s.metrics.ObserveWrite(kind, s.now().Sub(start))

	result.VisitCredited = s.creditVisit(ctx, input.MarketID, now)
	return result, nil
}

// creditVisit is best-effort telemetry: failures are logged and swallowed,
// never surfaced to the caller.
func (s *service) creditVisit(ctx context.Context, marketID *uuid.UUID, now time.Time) bool {
	if marketID == nil {
		return false
	}
	credited, err := s.visits.CreditVisit(ctx, *marketID, now)
	if err != nil {
		s.metrics.IncVisitCreditFailure()
		ctx = s.logg.WithMarketID(ctx, marketID.String())
		s.logg.Warn(ctx, "visit credit failed")
		return false
	}
	return credited
}

func (s *service) Ledger(ctx context.Context, waveID uuid.UUID, repID *uuid.UUID) ([]LedgerEntryDTO, error) {
	if waveID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wave id required")
	}
	exists, err := s.catalog.WaveExists(ctx, waveID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wave")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wave not found")
	}

	entries, err := s.repo.ListLedger(ctx, waveID, repID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger")
	}
	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, LedgerEntryDTO{
			WaveID:        entry.WaveID,
			RepID:         entry.RepID,
			ItemType:      entry.ItemType,
			ItemID:        entry.ItemID,
			CurrentNumber: entry.CurrentNumber,
			UpdatedAt:     entry.UpdatedAt,
		})
	}
	return dtos, nil
}

func (s *service) validateShape(input RecordInput) error {
	if input.WaveID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wave id required")
	}
	if input.RepID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "rep id required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	if len(input.Lines) > s.maxBatchItems {
		return pkgerrors.New(pkgerrors.CodeValidation, "too many items in one batch").
			WithDetails(map[string]any{"max_items": s.maxBatchItems})
	}

	var lineErrs error
	for i, line := range input.Lines {
		if !line.ItemType.IsValid() {
			lineErrs = multierr.Append(lineErrs, fmt.Errorf("line %d: invalid item type %q", i, line.ItemType))
		}
		if line.ItemID == uuid.Nil {
			lineErrs = multierr.Append(lineErrs, fmt.Errorf("line %d: item id required", i))
		}
		if line.Quantity == 0 {
			lineErrs = multierr.Append(lineErrs, fmt.Errorf("line %d: quantity must not be zero", i))
		}
	}
	if lineErrs != nil {
		messages := make([]string, 0)
		for _, lineErr := range multierr.Errors(lineErrs) {
			messages = append(messages, lineErr.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid contribution lines").
			WithDetails(map[string]any{"lines": messages})
	}
	return nil
}

// resolveCatalog verifies every referenced item against the live catalog and
// captures value snapshots before any write happens.
func (s *service) resolveCatalog(ctx context.Context, input RecordInput) ([]resolvedLine, error) {
	exists, err := s.catalog.WaveExists(ctx, input.WaveID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wave")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wave not found")
	}

	resolved := make([]resolvedLine, 0, len(input.Lines))
	for i, line := range input.Lines {
		if line.ItemType.IsComposite() {
			productLine, err := s.catalog.FindWaveProductLine(ctx, input.WaveID, line.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product line not found").
						WithDetails(map[string]any{"line": i, "item_id": line.ItemID})
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product line")
			}
			snapshot := productLine.ValuePerUnit
			if line.ValuePerUnit != nil {
				snapshot = *line.ValuePerUnit
			}
			resolved = append(resolved, resolvedLine{input: line, snapshot: &snapshot})
			continue
		}

		if _, err := s.catalog.FindFlatItem(ctx, input.WaveID, line.ItemID, line.ItemType); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found").
					WithDetails(map[string]any{"line": i, "item_id": line.ItemID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve catalog item")
		}
		resolved = append(resolved, resolvedLine{input: line, snapshot: line.ValuePerUnit})
	}
	return resolved, nil
}
