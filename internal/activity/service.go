package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/merchpilot/fieldops-backend/pkg/db/models"
	pkgerrors "github.com/merchpilot/fieldops-backend/pkg/errors"
	"github.com/merchpilot/fieldops-backend/pkg/pagination"
)

type submissionLister interface {
	ListSubmissions(ctx context.Context, waveID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.SubmissionRecord, *pagination.Cursor, error)
}

type catalogLoader interface {
	WaveExists(ctx context.Context, waveID uuid.UUID) (bool, error)
	FindItemsByWave(ctx context.Context, waveID uuid.UUID) ([]models.CatalogItem, error)
}

type nameDirectory interface {
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Service renders the resolved activity feed of a wave.
type Service interface {
	List(ctx context.Context, waveID uuid.UUID, limit int, cursor string) ([]Activity, string, error)
}

type service struct {
	submissions submissionLister
	catalog     catalogLoader
	reps        nameDirectory
	markets     nameDirectory
}

// NewService builds the activity service.
func NewService(submissions submissionLister, catalog catalogLoader, reps, markets nameDirectory) (Service, error) {
	if submissions == nil {
		return nil, fmt.Errorf("submission lister required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if reps == nil {
		return nil, fmt.Errorf("reps directory required")
	}
	if markets == nil {
		return nil, fmt.Errorf("markets directory required")
	}
	return &service{
		submissions: submissions,
		catalog:     catalog,
		reps:        reps,
		markets:     markets,
	}, nil
}

func (s *service) List(ctx context.Context, waveID uuid.UUID, limit int, rawCursor string) ([]Activity, string, error) {
	if waveID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "wave id required")
	}
	cursor, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	exists, err := s.catalog.WaveExists(ctx, waveID)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wave")
	}
	if !exists {
		return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "wave not found")
	}

	records, next, err := s.submissions.ListSubmissions(ctx, waveID, limit, cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list submissions")
	}
	if len(records) == 0 {
		return []Activity{}, "", nil
	}

	index, err := s.buildIndex(ctx, waveID, records)
	if err != nil {
		return nil, "", err
	}

	activities := BuildActivities(records, index)
	nextCursor := ""
	if next != nil {
		nextCursor = pagination.EncodeCursor(*next)
	}
	return activities, nextCursor, nil
}

func (s *service) buildIndex(ctx context.Context, waveID uuid.UUID, records []models.SubmissionRecord) (CatalogIndex, error) {
	items, err := s.catalog.FindItemsByWave(ctx, waveID)
	if err != nil {
		return CatalogIndex{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	repIDs := make(map[uuid.UUID]bool)
	marketIDs := make(map[uuid.UUID]bool)
	for _, record := range records {
		repIDs[record.RepID] = true
		if record.MarketID != nil {
			marketIDs[*record.MarketID] = true
		}
	}

	repNames, err := s.reps.NamesByIDs(ctx, keys(repIDs))
	if err != nil {
		return CatalogIndex{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rep names")
	}
	marketNames, err := s.markets.NamesByIDs(ctx, keys(marketIDs))
	if err != nil {
		return CatalogIndex{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load market names")
	}

	return NewCatalogIndex(items, repNames, marketNames), nil
}

func keys(set map[uuid.UUID]bool) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
