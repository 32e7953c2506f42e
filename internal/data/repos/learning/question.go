package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type QuestionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error)
	CreateOptions(ctx context.Context, tx *gorm.DB, options []*types.QuestionOption) ([]*types.QuestionOption, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Question, error)
	// GetByDrillIDs returns questions ordered by position within each drill,
	// options preloaded in option order.
	GetByDrillIDs(ctx context.Context, tx *gorm.DB, drillIDs []uuid.UUID) ([]*types.Question, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Create(ctx context.Context, tx *gorm.DB, questions []*types.Question) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(questions) == 0 {
		return []*types.Question{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) CreateOptions(ctx context.Context, tx *gorm.DB, options []*types.QuestionOption) ([]*types.QuestionOption, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(options) == 0 {
		return []*types.QuestionOption{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&options).Error; err != nil {
		return nil, err
	}
	return options, nil
}

func (r *questionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, questionIDs []uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if len(questionIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Options", optionOrder).
		Where("id IN ?", questionIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questionRepo) GetByDrillIDs(ctx context.Context, tx *gorm.DB, drillIDs []uuid.UUID) ([]*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Question
	if len(drillIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Options", optionOrder).
		Where("drill_id IN ?", drillIDs).
		Order("drill_id, position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func optionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
