package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type CourseCompletionRepo interface {
	// CreateIfAbsent appends the completion record, ignoring the insert when
	// one already exists for (user, course). This is what keeps the
	// once-per-user+course invariant under replayed completion events.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, completion *types.CourseCompletion) error
	Exists(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (bool, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CourseCompletion, error)
}

type courseCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseCompletionRepo(db *gorm.DB, baseLog *logger.Logger) CourseCompletionRepo {
	return &courseCompletionRepo{db: db, log: baseLog.With("repo", "CourseCompletionRepo")}
}

func (r *courseCompletionRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, completion *types.CourseCompletion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(completion).Error
}

func (r *courseCompletionRepo) Exists(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.CourseCompletion{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *courseCompletionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.CourseCompletion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CourseCompletion
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
