package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/app"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

// AnswerResult is what the client needs to render feedback after one
// answer. Stats/Progress are nil when the answer mutated nothing (timed
// sessions, repeated wrong answers, subscribed wrong answers).
type AnswerResult struct {
	Correct         bool                  `json:"correct"`
	CorrectOptionID uuid.UUID             `json:"correct_option_id"`
	Explanation     string                `json:"explanation,omitempty"`
	Stats           *types.UserStats      `json:"stats,omitempty"`
	Progress        *types.CourseProgress `json:"progress,omitempty"`
	Advanced        bool                  `json:"advanced"`
	CourseCompleted bool                  `json:"course_completed"`
}

// CompletionResult reports the outcome of finishing a whole drill or
// exercise session.
type CompletionResult struct {
	Passed          bool                  `json:"passed"`
	Stats           *types.UserStats      `json:"stats,omitempty"`
	Progress        *types.CourseProgress `json:"progress,omitempty"`
	Advanced        bool                  `json:"advanced"`
	CourseCompleted bool                  `json:"course_completed"`
}

// AnswerService grades answers server-side and translates each outcome
// into a ledger event. The grading rules:
//
//   - Untimed, correct, at the current position: points plus one counted
//     item; never gems.
//   - Untimed, correct, replayed or practiced content: points plus one gem.
//   - Untimed, wrong, at the current position: one gem deducted unless an
//     active subscription waives it. Repeated wrong answers in the same
//     pass mutate nothing (the client resubmits only first attempts).
//   - Timed content: individual answers never reach the ledger; only the
//     final completion call does.
type AnswerService interface {
	SubmitQuestionAnswer(ctx context.Context, userID, questionID, optionID uuid.UUID) (*AnswerResult, error)
	SubmitChallengeAnswer(ctx context.Context, userID, challengeID, optionID uuid.UUID) (*AnswerResult, error)
	CompleteDrill(ctx context.Context, userID, drillID uuid.UUID, scorePercentage int) (*CompletionResult, error)
	CompleteExercise(ctx context.Context, userID, exerciseID uuid.UUID, scorePercentage int) (*CompletionResult, error)
}

type answerService struct {
	db                *gorm.DB
	log               *logger.Logger
	rewards           app.Rewards
	questions         learningrepos.QuestionRepo
	challenges        learningrepos.ChallengeRepo
	drills            learningrepos.DrillRepo
	units             learningrepos.UnitRepo
	exercises         learningrepos.ExerciseRepo
	progress          learningrepos.CourseProgressRepo
	challengeProgress learningrepos.ChallengeProgressRepo
	subscriptions     userrepos.SubscriptionRepo
	ledger            LedgerService
	now               func() time.Time
}

func NewAnswerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rewards app.Rewards,
	questionRepo learningrepos.QuestionRepo,
	challengeRepo learningrepos.ChallengeRepo,
	drillRepo learningrepos.DrillRepo,
	unitRepo learningrepos.UnitRepo,
	exerciseRepo learningrepos.ExerciseRepo,
	progressRepo learningrepos.CourseProgressRepo,
	challengeProgressRepo learningrepos.ChallengeProgressRepo,
	subscriptionRepo userrepos.SubscriptionRepo,
	ledger LedgerService,
) AnswerService {
	return &answerService{
		db:                db,
		log:               baseLog.With("service", "AnswerService"),
		rewards:           rewards,
		questions:         questionRepo,
		challenges:        challengeRepo,
		drills:            drillRepo,
		units:             unitRepo,
		exercises:         exerciseRepo,
		progress:          progressRepo,
		challengeProgress: challengeProgressRepo,
		subscriptions:     subscriptionRepo,
		ledger:            ledger,
		now:               time.Now,
	}
}

func (s *answerService) SubmitQuestionAnswer(ctx context.Context, userID, questionID, optionID uuid.UUID) (*AnswerResult, error) {
	questions, err := s.questions.GetByIDs(ctx, nil, []uuid.UUID{questionID})
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("question %s: %w", questionID, apperrors.ErrNotFound)
	}
	question := questions[0]

	correct, correctID, err := gradeQuestionOption(question, optionID)
	if err != nil {
		return nil, err
	}

	drills, err := s.drills.GetByIDs(ctx, nil, []uuid.UUID{question.DrillID})
	if err != nil {
		return nil, fmt.Errorf("load drill: %w", err)
	}
	if len(drills) == 0 {
		return nil, fmt.Errorf("drill %s: %w", question.DrillID, apperrors.ErrNotFound)
	}
	drill := drills[0]

	result := &AnswerResult{
		Correct:         correct,
		CorrectOptionID: correctID,
		Explanation:     question.Explanation,
	}

	// Timed sessions are graded but settle only at completion time.
	if drill.IsTimed {
		return result, nil
	}

	courseID, err := s.courseIDForDrill(ctx, drill)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course progress: %w", err)
	}
	isCurrent := progress != nil && progress.CurrentDrillID == drill.ID

	var event CompletionEvent
	switch {
	case correct && isCurrent:
		event = CompletionEvent{
			ContentID:           drill.ID,
			CourseID:            courseID,
			PointsEarned:        s.rewards.PointsPerItem,
			ItemsCompletedDelta: 1,
			IsCurrentPosition:   true,
		}
	case correct:
		// Replay or practice: the position is untouched, points still
		// accrue, and the practice gem applies.
		event = CompletionEvent{
			ContentID:    drill.ID,
			PointsEarned: s.rewards.PointsPerItem,
			GemsEarned:   s.rewards.PracticeGemReward,
		}
	case isCurrent:
		subscribed, subErr := s.hasActiveSubscription(ctx, userID)
		if subErr != nil {
			return nil, subErr
		}
		if subscribed {
			return result, nil
		}
		event = CompletionEvent{
			ContentID:  drill.ID,
			GemsEarned: -s.rewards.WrongAnswerGemPenalty,
		}
	default:
		// Wrong answer outside the current position costs nothing.
		return result, nil
	}

	ledgerResult, err := s.ledger.Apply(ctx, nil, userID, event)
	if err != nil {
		return nil, err
	}
	result.Stats = ledgerResult.Stats
	result.Progress = ledgerResult.Progress
	result.Advanced = ledgerResult.Advanced
	result.CourseCompleted = ledgerResult.CourseCompleted
	return result, nil
}

func (s *answerService) SubmitChallengeAnswer(ctx context.Context, userID, challengeID, optionID uuid.UUID) (*AnswerResult, error) {
	challenges, err := s.challenges.GetByIDs(ctx, nil, []uuid.UUID{challengeID})
	if err != nil {
		return nil, fmt.Errorf("load challenge: %w", err)
	}
	if len(challenges) == 0 {
		return nil, fmt.Errorf("challenge %s: %w", challengeID, apperrors.ErrNotFound)
	}
	challenge := challenges[0]

	correct, correctID, err := gradeChallengeOption(challenge, optionID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exercises.GetByIDs(ctx, nil, []uuid.UUID{challenge.ExerciseID})
	if err != nil {
		return nil, fmt.Errorf("load exercise: %w", err)
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("exercise %s: %w", challenge.ExerciseID, apperrors.ErrNotFound)
	}
	exercise := exercises[0]

	result := &AnswerResult{
		Correct:         correct,
		CorrectOptionID: correctID,
		Explanation:     challenge.Explanation,
	}
	if exercise.IsTimed {
		return result, nil
	}

	existing, err := s.challengeProgress.GetByUserAndChallenge(ctx, nil, userID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("load challenge progress: %w", err)
	}
	// A pre-existing row means this is a repeat pass over the challenge.
	isRepeat := existing != nil

	// The ledger write and the challenge progress flip commit together.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case correct:
			event := CompletionEvent{
				ContentID:    challenge.ID,
				PointsEarned: s.rewards.PointsPerItem,
			}
			if isRepeat {
				event.GemsEarned = s.rewards.PracticeGemReward
			}
			ledgerResult, applyErr := s.ledger.Apply(ctx, tx, userID, event)
			if applyErr != nil {
				return applyErr
			}
			result.Stats = ledgerResult.Stats
			return s.upsertChallengeProgress(ctx, tx, userID, challengeID, existing, true)
		case !isRepeat:
			subscribed, subErr := s.hasActiveSubscription(ctx, userID)
			if subErr != nil {
				return subErr
			}
			if !subscribed {
				event := CompletionEvent{
					ContentID:  challenge.ID,
					GemsEarned: -s.rewards.WrongAnswerGemPenalty,
				}
				ledgerResult, applyErr := s.ledger.Apply(ctx, tx, userID, event)
				if applyErr != nil {
					return applyErr
				}
				result.Stats = ledgerResult.Stats
			}
			return s.upsertChallengeProgress(ctx, tx, userID, challengeID, existing, false)
		default:
			// Wrong on a repeat pass mutates nothing.
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *answerService) CompleteDrill(ctx context.Context, userID, drillID uuid.UUID, scorePercentage int) (*CompletionResult, error) {
	if scorePercentage < 0 || scorePercentage > 100 {
		return nil, fmt.Errorf("score %d out of range: %w", scorePercentage, apperrors.ErrInvalidArgument)
	}

	drills, err := s.drills.GetByIDs(ctx, nil, []uuid.UUID{drillID})
	if err != nil {
		return nil, fmt.Errorf("load drill: %w", err)
	}
	if len(drills) == 0 {
		return nil, fmt.Errorf("drill %s: %w", drillID, apperrors.ErrNotFound)
	}
	drill := drills[0]

	courseID, err := s.courseIDForDrill(ctx, drill)
	if err != nil {
		return nil, err
	}
	progress, err := s.progress.GetByUserAndCourse(ctx, nil, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course progress: %w", err)
	}
	isCurrent := progress != nil && progress.CurrentDrillID == drill.ID

	event := CompletionEvent{
		ContentID:         drill.ID,
		CourseID:          courseID,
		IsTimed:           drill.IsTimed,
		IsFullyCompleted:  true,
		IsCurrentPosition: isCurrent,
		ScorePercentage:   scorePercentage,
	}
	if drill.IsTimed {
		if scorePercentage < s.rewards.PassThreshold {
			// Failed timed runs leave every ledger field untouched.
			return &CompletionResult{Passed: false}, nil
		}
		event.PointsEarned = s.rewards.TimedBonusPoints
	}

	ledgerResult, err := s.ledger.Apply(ctx, nil, userID, event)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{
		Passed:          true,
		Stats:           ledgerResult.Stats,
		Progress:        ledgerResult.Progress,
		Advanced:        ledgerResult.Advanced,
		CourseCompleted: ledgerResult.CourseCompleted,
	}, nil
}

func (s *answerService) CompleteExercise(ctx context.Context, userID, exerciseID uuid.UUID, scorePercentage int) (*CompletionResult, error) {
	if scorePercentage < 0 || scorePercentage > 100 {
		return nil, fmt.Errorf("score %d out of range: %w", scorePercentage, apperrors.ErrInvalidArgument)
	}

	exercises, err := s.exercises.GetByIDs(ctx, nil, []uuid.UUID{exerciseID})
	if err != nil {
		return nil, fmt.Errorf("load exercise: %w", err)
	}
	if len(exercises) == 0 {
		return nil, fmt.Errorf("exercise %s: %w", exerciseID, apperrors.ErrNotFound)
	}
	exercise := exercises[0]

	event := CompletionEvent{
		ContentID:        exercise.ID,
		IsTimed:          exercise.IsTimed,
		IsFullyCompleted: true,
		ScorePercentage:  scorePercentage,
	}
	if exercise.IsTimed {
		if scorePercentage < s.rewards.PassThreshold {
			return &CompletionResult{Passed: false}, nil
		}
		event.PointsEarned = s.rewards.TimedBonusPoints
	}

	ledgerResult, err := s.ledger.Apply(ctx, nil, userID, event)
	if err != nil {
		return nil, err
	}
	return &CompletionResult{
		Passed: true,
		Stats:  ledgerResult.Stats,
	}, nil
}

func (s *answerService) upsertChallengeProgress(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, existing *types.ChallengeProgress, completed bool) error {
	row := &types.ChallengeProgress{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		Completed:   completed,
	}
	if existing != nil {
		row.ID = existing.ID
		// A completed challenge never drops back to incomplete.
		row.Completed = existing.Completed || completed
	}
	if err := s.challengeProgress.Upsert(ctx, tx, row); err != nil {
		return fmt.Errorf("upsert challenge progress: %w", err)
	}
	return nil
}

func (s *answerService) courseIDForDrill(ctx context.Context, drill *types.Drill) (uuid.UUID, error) {
	units, err := s.units.GetByIDs(ctx, nil, []uuid.UUID{drill.UnitID})
	if err != nil {
		return uuid.Nil, fmt.Errorf("load unit: %w", err)
	}
	if len(units) == 0 {
		return uuid.Nil, fmt.Errorf("unit %s: %w", drill.UnitID, apperrors.ErrNotFound)
	}
	return units[0].CourseID, nil
}

func (s *answerService) hasActiveSubscription(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.subscriptions.GetByUserID(ctx, nil, userID)
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	return sub != nil && sub.IsActive(s.now()), nil
}

func gradeQuestionOption(question *types.Question, optionID uuid.UUID) (correct bool, correctID uuid.UUID, err error) {
	var chosen bool
	for _, opt := range question.Options {
		if opt.IsCorrect {
			correctID = opt.ID
		}
		if opt.ID == optionID {
			chosen = true
			correct = opt.IsCorrect
		}
	}
	if !chosen {
		return false, uuid.Nil, fmt.Errorf("option %s does not belong to question %s: %w", optionID, question.ID, apperrors.ErrInvalidArgument)
	}
	return correct, correctID, nil
}

func gradeChallengeOption(challenge *types.Challenge, optionID uuid.UUID) (correct bool, correctID uuid.UUID, err error) {
	var chosen bool
	for _, opt := range challenge.Options {
		if opt.IsCorrect {
			correctID = opt.ID
		}
		if opt.ID == optionID {
			chosen = true
			correct = opt.IsCorrect
		}
	}
	if !chosen {
		return false, uuid.Nil, fmt.Errorf("option %s does not belong to challenge %s: %w", optionID, challenge.ID, apperrors.ErrInvalidArgument)
	}
	return correct, correctID, nil
}
