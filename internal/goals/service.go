package goals

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
)

// AssignmentReader is the slice of the assignments repository the engine needs.
type AssignmentReader interface {
	CountWaveMarkets(ctx context.Context, waveID uuid.UUID) (int, error)
	CountWaveMarketsOwnedBy(ctx context.Context, waveID uuid.UUID, repIDs []uuid.UUID) (int, error)
}

// Service resolves market-share ratios from the assignment tables and applies
// the proportional formulas. The same share computation backs a single rep's
// goal, a chain grouping's goal and a filtered wave card.
type Service interface {
	Share(ctx context.Context, waveID uuid.UUID, filter RepFilter) (Share, error)
	CountGoal(ctx context.Context, waveID uuid.UUID, filter RepFilter, target int) (int, error)
	ValueGoal(ctx context.Context, waveID uuid.UUID, filter RepFilter, target decimal.Decimal) (decimal.Decimal, error)
}

// Share captures the owned/total market counts behind one ratio.
type Share struct {
	Owned int
	Total int
}

// Ratio resolves the share to a decimal ratio (0 for 0/0).
func (s Share) Ratio() decimal.Decimal {
	return Ratio(s.Owned, s.Total)
}

type service struct {
	assignments AssignmentReader
}

// NewService builds the goal distribution service.
func NewService(assignments AssignmentReader) (Service, error) {
	if assignments == nil {
		return nil, fmt.Errorf("assignments reader required")
	}
	return &service{assignments: assignments}, nil
}

func (s *service) Share(ctx context.Context, waveID uuid.UUID, filter RepFilter) (Share, error) {
	if waveID == uuid.Nil {
		return Share{}, pkgerrors.New(pkgerrors.CodeValidation, "wave id required")
	}

	total, err := s.assignments.CountWaveMarkets(ctx, waveID)
	if err != nil {
		return Share{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count wave markets")
	}

	if !filter.Filtered() {
		return Share{Owned: total, Total: total}, nil
	}
	if filter.Empty() {
		return Share{Owned: 0, Total: total}, nil
	}

	owned, err := s.assignments.CountWaveMarketsOwnedBy(ctx, waveID, filter.IDs())
	if err != nil {
		return Share{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owned wave markets")
	}
	return Share{Owned: owned, Total: total}, nil
}

func (s *service) CountGoal(ctx context.Context, waveID uuid.UUID, filter RepFilter, target int) (int, error) {
	share, err := s.Share(ctx, waveID, filter)
	if err != nil {
		return 0, err
	}
	return ProportionalCount(target, share.Owned, share.Total), nil
}

func (s *service) ValueGoal(ctx context.Context, waveID uuid.UUID, filter RepFilter, target decimal.Decimal) (decimal.Decimal, error) {
	share, err := s.Share(ctx, waveID, filter)
	if err != nil {
		return decimal.Zero, err
	}
	return ProportionalValue(target, share.Owned, share.Total), nil
}
