package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type DrillRepo interface {
	Create(ctx context.Context, tx *gorm.DB, drills []*types.Drill) ([]*types.Drill, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, drillIDs []uuid.UUID) ([]*types.Drill, error)
	// GetByUnitIDs returns drills ordered by position within each unit.
	GetByUnitIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Drill, error)
}

type drillRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDrillRepo(db *gorm.DB, baseLog *logger.Logger) DrillRepo {
	return &drillRepo{db: db, log: baseLog.With("repo", "DrillRepo")}
}

func (r *drillRepo) Create(ctx context.Context, tx *gorm.DB, drills []*types.Drill) ([]*types.Drill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(drills) == 0 {
		return []*types.Drill{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&drills).Error; err != nil {
		return nil, err
	}
	return drills, nil
}

func (r *drillRepo) GetByIDs(ctx context.Context, tx *gorm.DB, drillIDs []uuid.UUID) ([]*types.Drill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Drill
	if len(drillIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", drillIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *drillRepo) GetByUnitIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Drill, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Drill
	if len(unitIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("unit_id IN ?", unitIDs).
		Order("unit_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
