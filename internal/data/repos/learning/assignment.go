package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type SessionAssignmentRepo interface {
	// Get returns nil when no assignment exists for (user, content, purpose).
	Get(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID, purpose string) (*types.SessionAssignment, error)
	// Upsert overwrites the stored item list with a conflict target on
	// (user_id, content_id, purpose). Regeneration replaces, never appends.
	Upsert(ctx context.Context, tx *gorm.DB, assignment *types.SessionAssignment) error
}

type sessionAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) SessionAssignmentRepo {
	return &sessionAssignmentRepo{db: db, log: baseLog.With("repo", "SessionAssignmentRepo")}
}

func (r *sessionAssignmentRepo) Get(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID, purpose string) (*types.SessionAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SessionAssignment
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND content_id = ? AND purpose = ?", userID, contentID, purpose).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *sessionAssignmentRepo) Upsert(ctx context.Context, tx *gorm.DB, assignment *types.SessionAssignment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_id"}, {Name: "purpose"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_ids", "content_kind", "updated_at"}),
		}).
		Create(assignment).Error
}
