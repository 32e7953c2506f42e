package user

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type SubscriptionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, subs []*types.Subscription) ([]*types.Subscription, error)
	// GetByUserID returns nil when the user has no subscription row.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Subscription, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (sr *subscriptionRepo) Create(ctx context.Context, tx *gorm.DB, subs []*types.Subscription) ([]*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(subs) == 0 {
		return []*types.Subscription{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (sr *subscriptionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Subscription
	if err := transaction.WithContext(ctx).
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
