package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type UserStatsRepo interface {
	Create(ctx context.Context, tx *gorm.DB, stats []*types.UserStats) ([]*types.UserStats, error)
	// GetByUserID returns nil when the user has no stats row yet.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	// GetByUserIDForUpdate locks the row for the lifetime of tx. The ledger
	// transaction uses this so the gem-floor check and the write happen
	// against the same snapshot.
	GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error)
	Update(ctx context.Context, tx *gorm.DB, statsID uuid.UUID, fields map[string]any) error
}

type userStatsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStatsRepo(db *gorm.DB, baseLog *logger.Logger) UserStatsRepo {
	return &userStatsRepo{db: db, log: baseLog.With("repo", "UserStatsRepo")}
}

func (r *userStatsRepo) Create(ctx context.Context, tx *gorm.DB, stats []*types.UserStats) ([]*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(stats) == 0 {
		return []*types.UserStats{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *userStatsRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	return r.getByUserID(ctx, tx, userID, false)
}

func (r *userStatsRepo) GetByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserStats, error) {
	return r.getByUserID(ctx, tx, userID, true)
}

func (r *userStatsRepo) getByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, forUpdate bool) (*types.UserStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var results []*types.UserStats
	if err := query.
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *userStatsRepo) Update(ctx context.Context, tx *gorm.DB, statsID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.UserStats{}).
		Where("id = ?", statsID).
		Updates(fields).Error
}
