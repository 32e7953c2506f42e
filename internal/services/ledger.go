package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/app"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

// CompletionEvent describes one reward/progress mutation. CourseID is
// uuid.Nil for course-independent content (exercise tree), which skips all
// position logic.
type CompletionEvent struct {
	ContentID           uuid.UUID
	CourseID            uuid.UUID
	IsTimed             bool
	PointsEarned        int
	GemsEarned          int
	ItemsCompletedDelta int
	IsFullyCompleted    bool
	IsCurrentPosition   bool
	ScorePercentage     int
}

type LedgerResult struct {
	Stats           *types.UserStats
	Progress        *types.CourseProgress
	Advanced        bool
	CourseCompleted bool
}

// LedgerService applies a completion event atomically: gem floor/ceiling,
// points, streaks and position advancement all commit together or not at
// all. ErrInsufficientGems rolls the whole event back. A nil tx runs the
// event in its own transaction; a non-nil tx joins the caller's.
type LedgerService interface {
	Apply(ctx context.Context, tx *gorm.DB, userID uuid.UUID, event CompletionEvent) (*LedgerResult, error)
}

type ledgerService struct {
	db          *gorm.DB
	log         *logger.Logger
	rewards     app.Rewards
	stats       userrepos.UserStatsRepo
	progress    learningrepos.CourseProgressRepo
	completions learningrepos.CourseCompletionRepo
	units       learningrepos.UnitRepo
	drills      learningrepos.DrillRepo
	leaderboard LeaderboardService
	tracer      trace.Tracer
	now         func() time.Time
}

func NewLedgerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rewards app.Rewards,
	statsRepo userrepos.UserStatsRepo,
	progressRepo learningrepos.CourseProgressRepo,
	completionRepo learningrepos.CourseCompletionRepo,
	unitRepo learningrepos.UnitRepo,
	drillRepo learningrepos.DrillRepo,
	leaderboard LeaderboardService,
) LedgerService {
	return &ledgerService{
		db:          db,
		log:         baseLog.With("service", "LedgerService"),
		rewards:     rewards,
		stats:       statsRepo,
		progress:    progressRepo,
		completions: completionRepo,
		units:       unitRepo,
		drills:      drillRepo,
		leaderboard: leaderboard,
		tracer:      otel.Tracer("ledger"),
		now:         time.Now,
	}
}

func (s *ledgerService) Apply(ctx context.Context, tx *gorm.DB, userID uuid.UUID, event CompletionEvent) (*LedgerResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.apply",
		trace.WithAttributes(
			attribute.String("user_id", userID.String()),
			attribute.String("content_id", event.ContentID.String()),
			attribute.Bool("is_timed", event.IsTimed),
			attribute.Bool("fully_completed", event.IsFullyCompleted),
		))
	defer span.End()

	result := &LedgerResult{}
	run := func(tx *gorm.DB) error {
		stats, err := s.stats.GetByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("lock user stats: %w", err)
		}
		if stats == nil {
			return fmt.Errorf("user stats for %s: %w", userID, apperrors.ErrNotFound)
		}

		// Gem floor: reject the whole event before anything is written.
		if stats.Gems+event.GemsEarned < 0 {
			return apperrors.ErrInsufficientGems
		}

		updated := applyRewards(*stats, event, s.rewards, dateOnly(s.now().UTC()))
		fields := map[string]any{
			"gems":           updated.Gems,
			"points":         updated.Points,
			"current_streak": updated.CurrentStreak,
			"longest_streak": updated.LongestStreak,
		}
		if updated.LastActivityDate != nil {
			fields["last_activity_date"] = *updated.LastActivityDate
		}
		if err := s.stats.Update(ctx, tx, stats.ID, fields); err != nil {
			return fmt.Errorf("update user stats: %w", err)
		}
		result.Stats = &updated

		if event.IsCurrentPosition && event.CourseID != uuid.Nil {
			if err := s.applyPosition(ctx, tx, userID, event, result); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if tx == nil {
		err = s.db.WithContext(ctx).Transaction(run)
	} else {
		err = tx.WithContext(ctx).Transaction(run)
	}
	if err != nil {
		return nil, err
	}

	// Leaderboard updates ride outside the transaction; losing one is
	// tolerable, losing the ledger write is not.
	if s.leaderboard != nil && event.PointsEarned > 0 {
		if lbErr := s.leaderboard.AddPoints(ctx, userID, event.PointsEarned); lbErr != nil {
			s.log.Warn("leaderboard update failed", "user_id", userID, "error", lbErr)
		}
	}
	return result, nil
}

func (s *ledgerService) applyPosition(ctx context.Context, tx *gorm.DB, userID uuid.UUID, event CompletionEvent, result *LedgerResult) error {
	progress, err := s.progress.GetByUserAndCourseForUpdate(ctx, tx, userID, event.CourseID)
	if err != nil {
		return fmt.Errorf("lock course progress: %w", err)
	}
	if progress == nil {
		return fmt.Errorf("course progress for %s: %w", userID, apperrors.ErrNotFound)
	}

	quota := s.rewards.SessionSize
	advance := false
	newCount := progress.QuestionsCompleted

	switch {
	case event.IsTimed && !event.IsFullyCompleted:
		// Timed drills never accumulate partial credit.
		newCount = 0
	case event.IsTimed:
		if event.ScorePercentage >= s.rewards.PassThreshold {
			advance = true
		} else {
			newCount = 0
		}
	default:
		newCount = progress.QuestionsCompleted + event.ItemsCompletedDelta
		if event.IsFullyCompleted || newCount >= quota {
			advance = true
		}
	}

	if advance {
		next, err := s.resolveNextDrill(ctx, tx, event.CourseID, progress.CurrentDrillID)
		if err != nil {
			return err
		}
		if next != nil {
			result.Advanced = true
			if err := s.progress.Update(ctx, tx, progress.ID, map[string]any{
				"current_drill_id":    next.ID,
				"questions_completed": 0,
			}); err != nil {
				return err
			}
			progress.CurrentDrillID = next.ID
			progress.QuestionsCompleted = 0
			result.Progress = progress
			return nil
		}
		// Cascade exhausted: the course is done. Pin the counter at the
		// quota so "nothing left" is observable, and append the completion
		// record exactly once.
		completion := &types.CourseCompletion{
			ID:          uuid.New(),
			UserID:      userID,
			CourseID:    event.CourseID,
			CompletedAt: s.now().UTC(),
		}
		if err := s.completions.CreateIfAbsent(ctx, tx, completion); err != nil {
			return fmt.Errorf("record course completion: %w", err)
		}
		result.CourseCompleted = true
		if err := s.progress.Update(ctx, tx, progress.ID, map[string]any{
			"questions_completed": quota,
		}); err != nil {
			return err
		}
		progress.QuestionsCompleted = quota
		result.Progress = progress
		return nil
	}

	if newCount != progress.QuestionsCompleted {
		if err := s.progress.Update(ctx, tx, progress.ID, map[string]any{
			"questions_completed": newCount,
		}); err != nil {
			return err
		}
		progress.QuestionsCompleted = newCount
	}
	result.Progress = progress
	return nil
}

// resolveNextDrill walks the ordered next-position resolvers: the next
// sibling drill in the same unit, then the first drill of each following
// unit. Returns nil when the cascade is exhausted.
func (s *ledgerService) resolveNextDrill(ctx context.Context, tx *gorm.DB, courseID, currentDrillID uuid.UUID) (*types.Drill, error) {
	currents, err := s.drills.GetByIDs(ctx, tx, []uuid.UUID{currentDrillID})
	if err != nil {
		return nil, fmt.Errorf("load current drill: %w", err)
	}
	if len(currents) == 0 {
		return nil, fmt.Errorf("current drill %s: %w", currentDrillID, apperrors.ErrNotFound)
	}
	current := currents[0]

	siblings, err := s.drills.GetByUnitIDs(ctx, tx, []uuid.UUID{current.UnitID})
	if err != nil {
		return nil, fmt.Errorf("load sibling drills: %w", err)
	}
	if next := firstDrillAfter(siblings, current.Order); next != nil {
		return next, nil
	}

	units, err := s.units.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load course units: %w", err)
	}
	currentUnitOrder := -1
	for _, u := range units {
		if u.ID == current.UnitID {
			currentUnitOrder = u.Order
			break
		}
	}
	for _, u := range units {
		if currentUnitOrder >= 0 && u.Order <= currentUnitOrder {
			continue
		}
		drills, err := s.drills.GetByUnitIDs(ctx, tx, []uuid.UUID{u.ID})
		if err != nil {
			return nil, fmt.Errorf("load next unit drills: %w", err)
		}
		if len(drills) > 0 {
			return drills[0], nil
		}
	}
	return nil, nil
}

// firstDrillAfter returns the lowest-ordered drill strictly after order,
// or nil. Input is already ordered by position.
func firstDrillAfter(drills []*types.Drill, order int) *types.Drill {
	for _, d := range drills {
		if d.Order > order {
			return d
		}
	}
	return nil
}

// applyRewards computes the post-event stats row. Pure so the clamp and
// streak rules are testable without a database. The gem floor has already
// been checked by the caller.
func applyRewards(stats types.UserStats, event CompletionEvent, rewards app.Rewards, today time.Time) types.UserStats {
	stats.Gems += event.GemsEarned
	if stats.Gems < 0 {
		stats.Gems = 0
	}
	if stats.Gems > rewards.GemsLimit {
		stats.Gems = rewards.GemsLimit
	}

	stats.Points += event.PointsEarned
	if stats.Points < 0 {
		stats.Points = 0
	}

	if event.IsFullyCompleted {
		applyStreak(&stats, today)
	}
	return stats
}

// applyStreak advances the day-granular streak. Same-day repeats are
// no-ops; a gap of more than one calendar day resets before incrementing.
func applyStreak(stats *types.UserStats, today time.Time) {
	if stats.LastActivityDate != nil {
		last := dateOnly(stats.LastActivityDate.UTC())
		if last.Equal(today) {
			return
		}
		if today.Sub(last) > 24*time.Hour {
			stats.CurrentStreak = 0
		}
	}
	stats.CurrentStreak++
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.LastActivityDate = &today
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
