package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/content"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type AccessResult struct {
	Drill              *types.Drill
	IsCurrentPosition  bool
	QuestionsCompleted int
}

// AccessService validates that a requested drill is unlocked for the
// requesting user before any session starts. Unlocking is monotonic by
// position; anything ahead of the pointer — or outside the active course —
// reports not-found rather than forbidden, so locked content leaks nothing.
type AccessService interface {
	ResolveAccess(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, unitNumber, drillNumber int) (*AccessResult, error)
}

type accessService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    userrepos.UserRepo
	progress learningrepos.CourseProgressRepo
	units    learningrepos.UnitRepo
	drills   learningrepos.DrillRepo
}

func NewAccessService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo userrepos.UserRepo,
	progressRepo learningrepos.CourseProgressRepo,
	unitRepo learningrepos.UnitRepo,
	drillRepo learningrepos.DrillRepo,
) AccessService {
	return &accessService{
		db:       db,
		log:      baseLog.With("service", "AccessService"),
		users:    userRepo,
		progress: progressRepo,
		units:    unitRepo,
		drills:   drillRepo,
	}
}

func (s *accessService) ResolveAccess(ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, unitNumber, drillNumber int) (*AccessResult, error) {
	users, err := s.users.GetByIDs(ctx, tx, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, apperrors.ErrNotFound)
	}
	user := users[0]
	if user.ActiveCourseID == nil || *user.ActiveCourseID != courseID {
		return nil, fmt.Errorf("course %s is not the active course: %w", courseID, apperrors.ErrNotFound)
	}

	progress, err := s.progress.GetByUserAndCourse(ctx, tx, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course progress: %w", err)
	}
	if progress == nil {
		return nil, fmt.Errorf("course progress: %w", apperrors.ErrNotFound)
	}

	cache := content.NewCache(s.units, s.drills)

	units, err := cache.UnitsByCourse(ctx, tx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}

	var requested *types.Unit
	for _, u := range units {
		if u.UnitNumber == unitNumber {
			requested = u
			break
		}
	}
	if requested == nil {
		return nil, fmt.Errorf("unit %d: %w", unitNumber, apperrors.ErrNotFound)
	}

	currentUnit, currentDrill, err := s.locateCurrent(ctx, tx, cache, units, progress.CurrentDrillID)
	if err != nil {
		return nil, err
	}

	// Units ahead of the learner's position are locked.
	if requested.UnitNumber > currentUnit.UnitNumber {
		return nil, fmt.Errorf("unit %d is locked: %w", unitNumber, apperrors.ErrNotFound)
	}

	drills, err := cache.DrillsByUnit(ctx, tx, requested.ID)
	if err != nil {
		return nil, fmt.Errorf("load drills: %w", err)
	}
	var drill *types.Drill
	for _, d := range drills {
		if d.DrillNumber == drillNumber {
			drill = d
			break
		}
	}
	if drill == nil {
		return nil, fmt.Errorf("drill %d: %w", drillNumber, apperrors.ErrNotFound)
	}

	// Inside the current unit, drills ahead of the pointer are locked.
	if requested.ID == currentUnit.ID && drill.DrillNumber > currentDrill.DrillNumber {
		return nil, fmt.Errorf("drill %d is locked: %w", drillNumber, apperrors.ErrNotFound)
	}

	result := &AccessResult{
		Drill:             drill,
		IsCurrentPosition: drill.ID == progress.CurrentDrillID,
	}
	// Timed drills are always attempted fresh, so stored partial progress
	// is never reported for them.
	if result.IsCurrentPosition && !drill.IsTimed {
		result.QuestionsCompleted = progress.QuestionsCompleted
	}
	return result, nil
}

func (s *accessService) locateCurrent(ctx context.Context, tx *gorm.DB, cache *content.Cache, units []*types.Unit, currentDrillID uuid.UUID) (*types.Unit, *types.Drill, error) {
	drills, err := s.drills.GetByIDs(ctx, tx, []uuid.UUID{currentDrillID})
	if err != nil {
		return nil, nil, fmt.Errorf("load current drill: %w", err)
	}
	if len(drills) == 0 {
		return nil, nil, fmt.Errorf("current drill %s: %w", currentDrillID, apperrors.ErrNotFound)
	}
	current := drills[0]
	for _, u := range units {
		if u.ID == current.UnitID {
			return u, current, nil
		}
	}
	return nil, nil, fmt.Errorf("unit for current drill %s: %w", currentDrillID, apperrors.ErrNotFound)
}
