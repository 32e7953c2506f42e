package learning

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type ChallengeProgressRepo interface {
	// GetByUserAndChallenge returns nil when the user has never touched the
	// challenge.
	GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (*types.ChallengeProgress, error)
	GetByUserAndChallengeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, challengeIDs []uuid.UUID) ([]*types.ChallengeProgress, error)
	// Upsert writes the row with a conflict target on (user_id,
	// challenge_id), so concurrent first-touches cannot race a
	// read-check-then-insert sequence.
	Upsert(ctx context.Context, tx *gorm.DB, progress *types.ChallengeProgress) error
}

type challengeProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeProgressRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeProgressRepo {
	return &challengeProgressRepo{db: db, log: baseLog.With("repo", "ChallengeProgressRepo")}
}

func (r *challengeProgressRepo) GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeProgress
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *challengeProgressRepo) GetByUserAndChallengeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, challengeIDs []uuid.UUID) ([]*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeProgress
	if len(challengeIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND challenge_id IN ?", userID, challengeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeProgressRepo) Upsert(ctx context.Context, tx *gorm.DB, progress *types.ChallengeProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
		}).
		Create(progress).Error
}
