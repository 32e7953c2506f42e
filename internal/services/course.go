package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/content"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

// DrillNode decorates a drill with the requesting user's lock state so
// the client can render the course map without re-deriving unlock rules.
type DrillNode struct {
	*types.Drill
	Locked    bool `json:"locked"`
	IsCurrent bool `json:"is_current"`
}

type UnitNode struct {
	*types.Unit
	Drills []*DrillNode `json:"drills"`
}

type CourseTree struct {
	Course    *types.Course `json:"course"`
	Units     []*UnitNode   `json:"units"`
	Completed bool          `json:"completed"`
}

// ExerciseNode decorates an exercise with how many of its challenges the
// user has completed.
type ExerciseNode struct {
	*types.Exercise
	ChallengeCount int `json:"challenge_count"`
	CompletedCount int `json:"completed_count"`
}

type CourseService interface {
	ListCourses(ctx context.Context) ([]*types.Course, error)
	GetCourseTree(ctx context.Context, userID, courseID uuid.UUID) (*CourseTree, error)
	ListExercises(ctx context.Context, userID uuid.UUID) ([]*ExerciseNode, error)
}

type courseService struct {
	db                *gorm.DB
	log               *logger.Logger
	courses           learningrepos.CourseRepo
	units             learningrepos.UnitRepo
	drills            learningrepos.DrillRepo
	exercises         learningrepos.ExerciseRepo
	challenges        learningrepos.ChallengeRepo
	progress          learningrepos.CourseProgressRepo
	completions       learningrepos.CourseCompletionRepo
	challengeProgress learningrepos.ChallengeProgressRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo learningrepos.CourseRepo,
	unitRepo learningrepos.UnitRepo,
	drillRepo learningrepos.DrillRepo,
	exerciseRepo learningrepos.ExerciseRepo,
	challengeRepo learningrepos.ChallengeRepo,
	progressRepo learningrepos.CourseProgressRepo,
	completionRepo learningrepos.CourseCompletionRepo,
	challengeProgressRepo learningrepos.ChallengeProgressRepo,
) CourseService {
	return &courseService{
		db:                db,
		log:               baseLog.With("service", "CourseService"),
		courses:           courseRepo,
		units:             unitRepo,
		drills:            drillRepo,
		exercises:         exerciseRepo,
		challenges:        challengeRepo,
		progress:          progressRepo,
		completions:       completionRepo,
		challengeProgress: challengeProgressRepo,
	}
}

func (s *courseService) ListCourses(ctx context.Context) ([]*types.Course, error) {
	courses, err := s.courses.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) GetCourseTree(ctx context.Context, userID, courseID uuid.UUID) (*CourseTree, error) {
	var (
		course      *types.Course
		progress    *types.CourseProgress
		isCompleted bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		courses, err := s.courses.GetByIDs(gctx, nil, []uuid.UUID{courseID})
		if err != nil {
			return fmt.Errorf("load course: %w", err)
		}
		if len(courses) == 0 {
			return fmt.Errorf("course %s: %w", courseID, apperrors.ErrNotFound)
		}
		course = courses[0]
		return nil
	})
	g.Go(func() error {
		p, err := s.progress.GetByUserAndCourse(gctx, nil, userID, courseID)
		if err != nil {
			return fmt.Errorf("load course progress: %w", err)
		}
		progress = p
		return nil
	})
	g.Go(func() error {
		done, err := s.completions.Exists(gctx, nil, userID, courseID)
		if err != nil {
			return fmt.Errorf("check course completion: %w", err)
		}
		isCompleted = done
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cache := content.NewCache(s.units, s.drills)
	units, err := cache.UnitsByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}

	var currentDrill *types.Drill
	var currentUnitID uuid.UUID
	if progress != nil {
		drills, dErr := s.drills.GetByIDs(ctx, nil, []uuid.UUID{progress.CurrentDrillID})
		if dErr != nil {
			return nil, fmt.Errorf("load current drill: %w", dErr)
		}
		if len(drills) > 0 {
			currentDrill = drills[0]
			currentUnitID = currentDrill.UnitID
		}
	}

	tree := &CourseTree{Course: course, Units: make([]*UnitNode, 0, len(units)), Completed: isCompleted}
	currentUnitOrder := -1
	for _, u := range units {
		if u.ID == currentUnitID {
			currentUnitOrder = u.Order
		}
	}
	for _, u := range units {
		drills, dErr := cache.DrillsByUnit(ctx, nil, u.ID)
		if dErr != nil {
			return nil, fmt.Errorf("load drills: %w", dErr)
		}
		node := &UnitNode{Unit: u, Drills: make([]*DrillNode, 0, len(drills))}
		for _, d := range drills {
			locked := true
			switch {
			case isCompleted:
				locked = false
			case currentDrill == nil:
				// No progress row yet: the whole tree is locked.
			case u.Order < currentUnitOrder:
				locked = false
			case u.ID == currentUnitID && d.Order <= currentDrill.Order:
				locked = false
			}
			node.Drills = append(node.Drills, &DrillNode{
				Drill:     d,
				Locked:    locked,
				IsCurrent: currentDrill != nil && d.ID == currentDrill.ID,
			})
		}
		tree.Units = append(tree.Units, node)
	}
	return tree, nil
}

func (s *courseService) ListExercises(ctx context.Context, userID uuid.UUID) ([]*ExerciseNode, error) {
	exercises, err := s.exercises.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if len(exercises) == 0 {
		return []*ExerciseNode{}, nil
	}

	exerciseIDs := make([]uuid.UUID, 0, len(exercises))
	for _, e := range exercises {
		exerciseIDs = append(exerciseIDs, e.ID)
	}
	challenges, err := s.challenges.GetByExerciseIDs(ctx, nil, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}

	challengeIDs := make([]uuid.UUID, 0, len(challenges))
	for _, c := range challenges {
		challengeIDs = append(challengeIDs, c.ID)
	}
	progressRows, err := s.challengeProgress.GetByUserAndChallengeIDs(ctx, nil, userID, challengeIDs)
	if err != nil {
		return nil, fmt.Errorf("load challenge progress: %w", err)
	}
	completed := make(map[uuid.UUID]bool, len(progressRows))
	for _, row := range progressRows {
		if row.Completed {
			completed[row.ChallengeID] = true
		}
	}

	nodes := make([]*ExerciseNode, 0, len(exercises))
	byExercise := make(map[uuid.UUID]*ExerciseNode, len(exercises))
	for _, e := range exercises {
		node := &ExerciseNode{Exercise: e}
		byExercise[e.ID] = node
		nodes = append(nodes, node)
	}
	for _, c := range challenges {
		node := byExercise[c.ExerciseID]
		if node == nil {
			continue
		}
		node.ChallengeCount++
		if completed[c.ID] {
			node.CompletedCount++
		}
	}
	return nodes, nil
}
