package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type ExerciseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) ([]*types.Exercise, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Exercise, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Exercise, error)
}

type exerciseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExerciseRepo(db *gorm.DB, baseLog *logger.Logger) ExerciseRepo {
	return &exerciseRepo{db: db, log: baseLog.With("repo", "ExerciseRepo")}
}

func (r *exerciseRepo) Create(ctx context.Context, tx *gorm.DB, exercises []*types.Exercise) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(exercises) == 0 {
		return []*types.Exercise{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

func (r *exerciseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Exercise
	if len(exerciseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", exerciseIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *exerciseRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.Exercise, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Exercise
	if err := transaction.WithContext(ctx).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
