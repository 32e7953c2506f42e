package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type ChallengeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, challenges []*types.Challenge) ([]*types.Challenge, error)
	CreateOptions(ctx context.Context, tx *gorm.DB, options []*types.ChallengeOption) ([]*types.ChallengeOption, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, challengeIDs []uuid.UUID) ([]*types.Challenge, error)
	// GetByExerciseIDs returns challenges ordered by position within each
	// exercise, options preloaded in option order.
	GetByExerciseIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Challenge, error)
}

type challengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeRepo {
	return &challengeRepo{db: db, log: baseLog.With("repo", "ChallengeRepo")}
}

func (r *challengeRepo) Create(ctx context.Context, tx *gorm.DB, challenges []*types.Challenge) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(challenges) == 0 {
		return []*types.Challenge{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *challengeRepo) CreateOptions(ctx context.Context, tx *gorm.DB, options []*types.ChallengeOption) ([]*types.ChallengeOption, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(options) == 0 {
		return []*types.ChallengeOption{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *challengeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, challengeIDs []uuid.UUID) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Challenge
	if len(challengeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Options", optionOrder).
		Where("id IN ?", challengeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeRepo) GetByExerciseIDs(ctx context.Context, tx *gorm.DB, exerciseIDs []uuid.UUID) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Challenge
	if len(exerciseIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Options", optionOrder).
		Where("exercise_id IN ?", exerciseIDs).
		Order("exercise_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
