package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

// DrillSession is everything the client needs to run one drill attempt:
// the hydrated items in their assigned order plus the resume counter.
type DrillSession struct {
	Drill              *types.Drill      `json:"drill"`
	Purpose            string            `json:"purpose"`
	Questions          []*types.Question `json:"questions"`
	QuestionsCompleted int               `json:"questions_completed"`
	Stats              *types.UserStats  `json:"stats,omitempty"`
}

type ExerciseSession struct {
	Exercise   *types.Exercise    `json:"exercise"`
	Purpose    string             `json:"purpose"`
	Challenges []*types.Challenge `json:"challenges"`
	// Completed maps challenge IDs in this session to whether the user has
	// already completed them.
	Completed map[uuid.UUID]bool `json:"completed"`
	Stats     *types.UserStats   `json:"stats,omitempty"`
}

// SessionService assembles drill and exercise sessions: access check,
// subset selection, then concurrent hydration of items and user state.
type SessionService interface {
	StartDrillSession(ctx context.Context, userID, courseID uuid.UUID, unitNumber, drillNumber int) (*DrillSession, error)
	StartExerciseSession(ctx context.Context, userID, exerciseID uuid.UUID, purpose string) (*ExerciseSession, error)
}

type sessionService struct {
	db                *gorm.DB
	log               *logger.Logger
	access            AccessService
	selector          SelectorService
	ledger            LedgerService
	questions         learningrepos.QuestionRepo
	challenges        learningrepos.ChallengeRepo
	exercises         learningrepos.ExerciseRepo
	challengeProgress learningrepos.ChallengeProgressRepo
	stats             userrepos.UserStatsRepo
}

func NewSessionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	access AccessService,
	selector SelectorService,
	ledger LedgerService,
	questionRepo learningrepos.QuestionRepo,
	challengeRepo learningrepos.ChallengeRepo,
	exerciseRepo learningrepos.ExerciseRepo,
	challengeProgressRepo learningrepos.ChallengeProgressRepo,
	statsRepo userrepos.UserStatsRepo,
) SessionService {
	return &sessionService{
		db:                db,
		log:               baseLog.With("service", "SessionService"),
		access:            access,
		selector:          selector,
		ledger:            ledger,
		questions:         questionRepo,
		challenges:        challengeRepo,
		exercises:         exerciseRepo,
		challengeProgress: challengeProgressRepo,
		stats:             statsRepo,
	}
}

func (s *sessionService) StartDrillSession(ctx context.Context, userID, courseID uuid.UUID, unitNumber, drillNumber int) (*DrillSession, error) {
	accessResult, err := s.access.ResolveAccess(ctx, nil, userID, courseID, unitNumber, drillNumber)
	if err != nil {
		return nil, err
	}
	drill := accessResult.Drill

	purpose := types.PurposePractice
	if accessResult.IsCurrentPosition {
		purpose = types.PurposeNormal
	}

	itemIDs, err := s.selector.SelectQuestions(ctx, nil, userID, drill.ID, purpose)
	if err != nil {
		return nil, err
	}

	var (
		questions []*types.Question
		stats     *types.UserStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, qErr := s.questions.GetByIDs(gctx, nil, itemIDs)
		if qErr != nil {
			return fmt.Errorf("load session questions: %w", qErr)
		}
		questions = orderQuestions(loaded, itemIDs)
		return nil
	})
	g.Go(func() error {
		loaded, sErr := s.stats.GetByUserID(gctx, nil, userID)
		if sErr != nil {
			return fmt.Errorf("load user stats: %w", sErr)
		}
		stats = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	session := &DrillSession{
		Drill:              drill,
		Purpose:            purpose,
		Questions:          questions,
		QuestionsCompleted: accessResult.QuestionsCompleted,
		Stats:              stats,
	}

	// Opening a timed drill at the current position wipes any stored
	// partial counter; timed attempts always start from zero.
	if drill.IsTimed && accessResult.IsCurrentPosition {
		if _, rErr := s.ledger.Apply(ctx, nil, userID, CompletionEvent{
			ContentID:         drill.ID,
			CourseID:          courseID,
			IsTimed:           true,
			IsCurrentPosition: true,
		}); rErr != nil {
			return nil, rErr
		}
		session.QuestionsCompleted = 0
	}
	return session, nil
}

func (s *sessionService) StartExerciseSession(ctx context.Context, userID, exerciseID uuid.UUID, purpose string) (*ExerciseSession, error) {
	if purpose == "" {
		purpose = types.PurposeNormal
	}
	if purpose != types.PurposeNormal && purpose != types.PurposePractice {
		return nil, fmt.Errorf("unknown session purpose %q: %w", purpose, apperrors.ErrInvalidArgument)
	}

	exercises, err := s.exercises.GetByIDs(ctx, nil, []uuid.UUID{exerciseID})
	if err != nil {
		return nil, fmt.Errorf("load exercise: %w", err)
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("exercise %s: %w", exerciseID, apperrors.ErrNotFound)
	}
	exercise := exercises[0]

	itemIDs, err := s.selector.SelectChallenges(ctx, nil, userID, exerciseID, purpose)
	if err != nil {
		return nil, err
	}

	var (
		challenges []*types.Challenge
		rows       []*types.ChallengeProgress
		stats      *types.UserStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, cErr := s.challenges.GetByIDs(gctx, nil, itemIDs)
		if cErr != nil {
			return fmt.Errorf("load session challenges: %w", cErr)
		}
		challenges = orderChallenges(loaded, itemIDs)
		return nil
	})
	g.Go(func() error {
		loaded, pErr := s.challengeProgress.GetByUserAndChallengeIDs(gctx, nil, userID, itemIDs)
		if pErr != nil {
			return fmt.Errorf("load challenge progress: %w", pErr)
		}
		rows = loaded
		return nil
	})
	g.Go(func() error {
		loaded, sErr := s.stats.GetByUserID(gctx, nil, userID)
		if sErr != nil {
			return fmt.Errorf("load user stats: %w", sErr)
		}
		stats = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := make(map[uuid.UUID]bool, len(itemIDs))
	for _, id := range itemIDs {
		completed[id] = false
	}
	for _, row := range rows {
		if row.Completed {
			completed[row.ChallengeID] = true
		}
	}

	return &ExerciseSession{
		Exercise:   exercise,
		Purpose:    purpose,
		Challenges: challenges,
		Completed:  completed,
		Stats:      stats,
	}, nil
}

// orderQuestions returns questions in assignment order. Items deleted
// since assignment time are skipped.
func orderQuestions(questions []*types.Question, order []uuid.UUID) []*types.Question {
	byID := make(map[uuid.UUID]*types.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	out := make([]*types.Question, 0, len(order))
	for _, id := range order {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out
}

func orderChallenges(challenges []*types.Challenge, order []uuid.UUID) []*types.Challenge {
	byID := make(map[uuid.UUID]*types.Challenge, len(challenges))
	for _, c := range challenges {
		byID[c.ID] = c
	}
	out := make([]*types.Challenge, 0, len(order))
	for _, id := range order {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
