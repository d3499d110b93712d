package waves

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/internal/assignments"
	"github.com/merchpilot/fieldops-backend/pkg/db"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	"github.com/merchpilot/fieldops-backend/pkg/enums"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines campaign catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateWaveInput) (*WaveDTO, error)
	GetByID(ctx context.Context, waveID uuid.UUID) (*WaveDTO, error)
	List(ctx context.Context) ([]WaveDTO, error)
	Delete(ctx context.Context, waveID uuid.UUID) error
}

type service struct {
	repo        Repository
	assignments assignments.Repository
	tx          txRunner
	now         func() time.Time
}

// NewService builds a waves service with the required dependencies.
func NewService(repo Repository, assignmentsRepo assignments.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("waves repository required")
	}
	if assignmentsRepo == nil {
		return nil, fmt.Errorf("assignments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		assignments: assignmentsRepo,
		tx:          tx,
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateWaveInput) (*WaveDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	wave := buildWaveModel(input)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateWave(ctx, wave); err != nil {
			if db.IsUniqueViolation(err, "wave_sell_windows_slot") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sell window slot already registered for this wave")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wave")
		}
		if err := s.assignments.WithTx(tx).AssignWaveMarkets(ctx, wave.ID, input.MarketIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign wave markets")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := s.toDTO(*wave)
	return &dto, nil
}

func (s *service) GetByID(ctx context.Context, waveID uuid.UUID) (*WaveDTO, error) {
	if waveID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wave id required")
	}

	wave, err := s.repo.FindWaveByID(ctx, waveID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wave not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wave")
	}

	dto := s.toDTO(*wave)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]WaveDTO, error) {
	waves, err := s.repo.ListWaves(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list waves")
	}

	dtos := make([]WaveDTO, 0, len(waves))
	for _, wave := range waves {
		dtos = append(dtos, s.toDTO(wave))
	}
	return dtos, nil
}

// Delete is the explicit admin cascade. It removes the wave, its catalog and
// its assignments but leaves the submission log untouched.
func (s *service) Delete(ctx context.Context, waveID uuid.UUID) error {
	if waveID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "wave id required")
	}
	exists, err := s.repo.WaveExists(ctx, waveID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wave")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wave not found")
	}
	if err := s.repo.DeleteWave(ctx, waveID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete wave")
	}
	return nil
}

func (s *service) toDTO(wave models.Wave) WaveDTO {
	dto := WaveDTO{
		ID:             wave.ID,
		Name:           wave.Name,
		StartsOn:       wave.StartsOn,
		EndsOn:         wave.EndsOn,
		Status:         StatusFor(wave, s.now()),
		GoalType:       wave.GoalType,
		GoalValue:      wave.GoalValue,
		GoalPercentage: wave.GoalPercentage,
		CreatedAt:      wave.CreatedAt,
	}
	for _, item := range wave.Items {
		itemDTO := ItemDTO{
			ID:           item.ID,
			Kind:         item.Kind,
			Name:         item.Name,
			TargetNumber: item.TargetNumber,
			ItemValue:    item.ItemValue,
			Size:         item.Size,
		}
		for _, line := range item.ProductLines {
			itemDTO.ProductLines = append(itemDTO.ProductLines, ProductLineDTO{
				ID:           line.ID,
				Name:         line.Name,
				ValuePerUnit: line.ValuePerUnit,
				UnitCount:    line.UnitCount,
				ExternalCode: line.ExternalCode,
			})
		}
		dto.Items = append(dto.Items, itemDTO)
	}
	for _, window := range wave.SellWindows {
		dto.SellWindows = append(dto.SellWindows, SellWindowDTO{
			ISOWeek: window.ISOWeek,
			Weekday: window.Weekday,
		})
	}
	return dto
}

func validateCreateInput(input CreateWaveInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "wave name required")
	}
	if input.StartsOn.IsZero() || input.EndsOn.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "wave date window required")
	}
	if input.EndsOn.Before(input.StartsOn) {
		return pkgerrors.New(pkgerrors.CodeValidation, "wave end date precedes start date")
	}
	if !input.GoalType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid goal type")
	}
	if input.GoalType == enums.GoalTypeValue && input.GoalValue == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "value goal requires goal_value")
	}
	if input.GoalType == enums.GoalTypePercentage && input.GoalPercentage == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage goal requires goal_percentage")
	}
	for _, window := range input.SellWindows {
		if window.ISOWeek < 1 || window.ISOWeek > 53 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sell window week out of range")
		}
		if window.Weekday < 1 || window.Weekday > 7 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sell window weekday out of range")
		}
	}
	for _, item := range input.Items {
		if err := validateItemInput(item); err != nil {
			return err
		}
	}
	return nil
}

func validateItemInput(item CreateItemInput) error {
	if !item.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
	}
	if item.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name required")
	}
	if item.Kind.IsComposite() {
		if len(item.ProductLines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "composite item requires product lines").
				WithDetails(map[string]any{"item": item.Name})
		}
		for _, line := range item.ProductLines {
			if line.Name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "product line name required")
			}
			if line.ValuePerUnit.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "product line value must not be negative")
			}
		}
		return nil
	}
	if item.ItemValue == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "flat item requires item_value").
			WithDetails(map[string]any{"item": item.Name})
	}
	if len(item.ProductLines) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "flat item must not carry product lines")
	}
	return nil
}

func buildWaveModel(input CreateWaveInput) *models.Wave {
	wave := &models.Wave{
		ID:             uuid.New(),
		Name:           input.Name,
		StartsOn:       input.StartsOn,
		EndsOn:         input.EndsOn,
		GoalType:       input.GoalType,
		GoalValue:      input.GoalValue,
		GoalPercentage: input.GoalPercentage,
	}
	for _, item := range input.Items {
		model := models.CatalogItem{
			ID:           uuid.New(),
			WaveID:       wave.ID,
			Kind:         item.Kind,
			Name:         item.Name,
			TargetNumber: item.TargetNumber,
			ItemValue:    item.ItemValue,
			Size:         item.Size,
		}
		for _, line := range item.ProductLines {
			model.ProductLines = append(model.ProductLines, models.ProductLine{
				ID:            uuid.New(),
				CatalogItemID: model.ID,
				Name:          line.Name,
				ValuePerUnit:  line.ValuePerUnit,
				UnitCount:     line.UnitCount,
				ExternalCode:  line.ExternalCode,
			})
		}
		wave.Items = append(wave.Items, model)
	}
	for _, window := range input.SellWindows {
		wave.SellWindows = append(wave.SellWindows, models.WaveSellWindow{
			ID:      uuid.New(),
			WaveID:  wave.ID,
			ISOWeek: window.ISOWeek,
			Weekday: window.Weekday,
		})
	}
	return wave
}
