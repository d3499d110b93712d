package reps

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merchpilot/fieldops-backend/internal/repo"
	"github.com/merchpilot/fieldops-backend/pkg/db/models"
)

// Repository defines read access to reps.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDs(ctx context.Context, repIDs []uuid.UUID) ([]models.Rep, error)
	NamesByIDs(ctx context.Context, repIDs []uuid.UUID) (map[uuid.UUID]string, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds a reps repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) FindByIDs(ctx context.Context, repIDs []uuid.UUID) ([]models.Rep, error) {
	if len(repIDs) == 0 {
		return nil, nil
	}
	var reps []models.Rep
	err := r.DB(ctx).
		Where("id IN ?", repIDs).
		Find(&reps).Error
	if err != nil {
		return nil, err
	}
	return reps, nil
}

func (r *repository) NamesByIDs(ctx context.Context, repIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	reps, err := r.FindByIDs(ctx, repIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(reps))
	for _, rep := range reps {
		names[rep.ID] = strings.TrimSpace(rep.FirstName + " " + rep.LastName)
	}
	return names, nil
}
