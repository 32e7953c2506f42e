package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/app"
	"github.com/triviumlab/trivium-backend/internal/content"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type Me struct {
	User        *types.User               `json:"user"`
	Stats       *types.UserStats          `json:"stats,omitempty"`
	Progress    *types.CourseProgress     `json:"progress,omitempty"`
	Completions []*types.CourseCompletion `json:"completions"`
	Subscribed  bool                      `json:"subscribed"`
}

type UserService interface {
	GetMe(ctx context.Context, userID uuid.UUID) (*Me, error)
	// ActivateCourse switches the user's active course, seeding the stats
	// row (first activation only) and the per-course progress pointer at the
	// course's first drill.
	ActivateCourse(ctx context.Context, userID, courseID uuid.UUID) (*Me, error)
}

type userService struct {
	db            *gorm.DB
	log           *logger.Logger
	rewards       app.Rewards
	users         userrepos.UserRepo
	stats         userrepos.UserStatsRepo
	subscriptions userrepos.SubscriptionRepo
	courses       learningrepos.CourseRepo
	units         learningrepos.UnitRepo
	drills        learningrepos.DrillRepo
	progress      learningrepos.CourseProgressRepo
	completions   learningrepos.CourseCompletionRepo
}

func NewUserService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rewards app.Rewards,
	userRepo userrepos.UserRepo,
	statsRepo userrepos.UserStatsRepo,
	subscriptionRepo userrepos.SubscriptionRepo,
	courseRepo learningrepos.CourseRepo,
	unitRepo learningrepos.UnitRepo,
	drillRepo learningrepos.DrillRepo,
	progressRepo learningrepos.CourseProgressRepo,
	completionRepo learningrepos.CourseCompletionRepo,
) UserService {
	return &userService{
		db:            db,
		log:           baseLog.With("service", "UserService"),
		rewards:       rewards,
		users:         userRepo,
		stats:         statsRepo,
		subscriptions: subscriptionRepo,
		courses:       courseRepo,
		units:         unitRepo,
		drills:        drillRepo,
		progress:      progressRepo,
		completions:   completionRepo,
	}
}

func (s *userService) GetMe(ctx context.Context, userID uuid.UUID) (*Me, error) {
	return s.loadMe(ctx, nil, userID)
}

func (s *userService) ActivateCourse(ctx context.Context, userID, courseID uuid.UUID) (*Me, error) {
	courses, err := s.courses.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if len(courses) == 0 {
		return nil, fmt.Errorf("course %s: %w", courseID, apperrors.ErrNotFound)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, sErr := s.stats.GetByUserID(ctx, tx, userID)
		if sErr != nil {
			return fmt.Errorf("load user stats: %w", sErr)
		}
		if stats == nil {
			// First activation ever: the gem balance starts full.
			seed := &types.UserStats{
				ID:     uuid.New(),
				UserID: userID,
				Gems:   s.rewards.GemsLimit,
			}
			if _, cErr := s.stats.Create(ctx, tx, []*types.UserStats{seed}); cErr != nil {
				return fmt.Errorf("create user stats: %w", cErr)
			}
		}

		progress, pErr := s.progress.GetByUserAndCourse(ctx, tx, userID, courseID)
		if pErr != nil {
			return fmt.Errorf("load course progress: %w", pErr)
		}
		if progress == nil {
			first, fErr := s.firstDrillOfCourse(ctx, tx, courseID)
			if fErr != nil {
				return fErr
			}
			seed := &types.CourseProgress{
				ID:             uuid.New(),
				UserID:         userID,
				CourseID:       courseID,
				CurrentDrillID: first.ID,
			}
			if _, cErr := s.progress.Create(ctx, tx, []*types.CourseProgress{seed}); cErr != nil {
				return fmt.Errorf("create course progress: %w", cErr)
			}
		}

		return s.users.UpdateActiveCourse(ctx, tx, userID, courseID)
	})
	if err != nil {
		return nil, err
	}
	return s.loadMe(ctx, nil, userID)
}

func (s *userService) loadMe(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*Me, error) {
	users, err := s.users.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	user := users[0]

	stats, err := s.stats.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user stats: %w", err)
	}

	completions, err := s.completions.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load course completions: %w", err)
	}
	if completions == nil {
		completions = []*types.CourseCompletion{}
	}

	sub, err := s.subscriptions.GetByUserID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	me := &Me{
		User:        user,
		Stats:       stats,
		Completions: completions,
		Subscribed:  sub.IsActive(time.Now()),
	}
	if user.ActiveCourseID != nil {
		progress, pErr := s.progress.GetByUserAndCourse(ctx, tx, userID, *user.ActiveCourseID)
		if pErr != nil {
			return nil, fmt.Errorf("load course progress: %w", pErr)
		}
		me.Progress = progress
	}
	return me, nil
}

// firstDrillOfCourse returns the first drill by traversal order, skipping
// units that have no drills.
func (s *userService) firstDrillOfCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (*types.Drill, error) {
	cache := content.NewCache(s.units, s.drills)
	units, err := cache.UnitsByCourse(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	for _, u := range units {
		drills, dErr := cache.DrillsByUnit(ctx, tx, u.ID)
		if dErr != nil {
			return nil, fmt.Errorf("load drills: %w", dErr)
		}
		if len(drills) > 0 {
			return drills[0], nil
		}
	}
	return nil, fmt.Errorf("course %s has no drills: %w", courseID, apperrors.ErrNotFound)
}
