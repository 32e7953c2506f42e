package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type CourseProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, entries []*types.CourseProgress) ([]*types.CourseProgress, error)
	// GetByUserAndCourse returns nil when no entry exists.
	GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.CourseProgress, error)
	// GetByUserAndCourseForUpdate locks the row for the lifetime of tx.
	GetByUserAndCourseForUpdate(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.CourseProgress, error)
	Update(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, fields map[string]any) error
}

type courseProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return &courseProgressRepo{db: db, log: baseLog.With("repo", "CourseProgressRepo")}
}

func (r *courseProgressRepo) Create(ctx context.Context, tx *gorm.DB, entries []*types.CourseProgress) ([]*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(entries) == 0 {
		return []*types.CourseProgress{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *courseProgressRepo) GetByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	return r.getByUserAndCourse(ctx, tx, userID, courseID, false)
}

func (r *courseProgressRepo) GetByUserAndCourseForUpdate(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) (*types.CourseProgress, error) {
	return r.getByUserAndCourse(ctx, tx, userID, courseID, true)
}

func (r *courseProgressRepo) getByUserAndCourse(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, forUpdate bool) (*types.CourseProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var results []*types.CourseProgress
	if err := query.
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *courseProgressRepo) Update(ctx context.Context, tx *gorm.DB, entryID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.CourseProgress{}).
		Where("id = ?", entryID).
		Updates(fields).Error
}
