package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type UnitRepo interface {
	Create(ctx context.Context, tx *gorm.DB, units []*types.Unit) ([]*types.Unit, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Unit, error)
	// GetByCourseIDs returns units ordered by position within each course.
	GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Unit, error)
}

type unitRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUnitRepo(db *gorm.DB, baseLog *logger.Logger) UnitRepo {
	return &unitRepo{db: db, log: baseLog.With("repo", "UnitRepo")}
}

func (r *unitRepo) Create(ctx context.Context, tx *gorm.DB, units []*types.Unit) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(units) == 0 {
		return []*types.Unit{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *unitRepo) GetByIDs(ctx context.Context, tx *gorm.DB, unitIDs []uuid.UUID) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Unit
	if len(unitIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", unitIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *unitRepo) GetByCourseIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Unit, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Unit
	if len(courseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("course_id IN ?", courseIDs).
		Order("course_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
