package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/app"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	"github.com/triviumlab/trivium-backend/internal/data/repos/testutil"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	apperrors "github.com/triviumlab/trivium-backend/internal/pkg/errors"
)

type answerFixture struct {
	svc       AnswerService
	stats     userrepos.UserStatsRepo
	user      *types.User
	course    *types.Course
	drills    []*types.Drill
	questions []*types.Question
}

// seedAnswer builds one unit with an untimed and a timed drill (three
// questions each; option order 0 is correct) and a user positioned at the
// untimed one.
func seedAnswer(t *testing.T, ctx context.Context, tx *gorm.DB, gems int) *answerFixture {
	t.Helper()
	log := testutil.Logger(t)

	course := testutil.SeedCourse(t, ctx, tx, "logic")
	unit := testutil.SeedUnit(t, ctx, tx, course.ID, 1, 1)
	untimed := testutil.SeedDrill(t, ctx, tx, unit.ID, 1, 1, false)
	timed := testutil.SeedDrill(t, ctx, tx, unit.ID, 2, 2, true)

	questions := make([]*types.Question, 0, 6)
	for i := 0; i < 3; i++ {
		questions = append(questions, testutil.SeedQuestion(t, ctx, tx, untimed.ID, i))
	}
	for i := 0; i < 3; i++ {
		questions = append(questions, testutil.SeedQuestion(t, ctx, tx, timed.ID, i))
	}

	user := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev")
	testutil.SeedUserStats(t, ctx, tx, user.ID, gems, 0)
	testutil.SeedCourseProgress(t, ctx, tx, user.ID, course.ID, untimed.ID, 0)

	statsRepo := userrepos.NewUserStatsRepo(tx, log)
	progressRepo := learningrepos.NewCourseProgressRepo(tx, log)
	unitRepo := learningrepos.NewUnitRepo(tx, log)
	drillRepo := learningrepos.NewDrillRepo(tx, log)
	ledger := NewLedgerService(
		tx, log, app.DefaultRewards(),
		statsRepo, progressRepo,
		learningrepos.NewCourseCompletionRepo(tx, log),
		unitRepo, drillRepo, nil,
	)
	svc := NewAnswerService(
		tx, log, app.DefaultRewards(),
		learningrepos.NewQuestionRepo(tx, log),
		learningrepos.NewChallengeRepo(tx, log),
		drillRepo, unitRepo,
		learningrepos.NewExerciseRepo(tx, log),
		progressRepo,
		learningrepos.NewChallengeProgressRepo(tx, log),
		userrepos.NewSubscriptionRepo(tx, log),
		ledger,
	)
	return &answerFixture{
		svc:       svc,
		stats:     statsRepo,
		user:      user,
		course:    course,
		drills:    []*types.Drill{untimed, timed},
		questions: questions,
	}
}

func correctOption(t *testing.T, tx *gorm.DB, questionID uuid.UUID) uuid.UUID {
	t.Helper()
	var opt types.QuestionOption
	if err := tx.Where("question_id = ? AND is_correct = ?", questionID, true).First(&opt).Error; err != nil {
		t.Fatalf("load correct option: %v", err)
	}
	return opt.ID
}

func wrongOption(t *testing.T, tx *gorm.DB, questionID uuid.UUID) uuid.UUID {
	t.Helper()
	var opt types.QuestionOption
	if err := tx.Where("question_id = ? AND is_correct = ?", questionID, false).First(&opt).Error; err != nil {
		t.Fatalf("load wrong option: %v", err)
	}
	return opt.ID
}

func TestCorrectFirstPassAwardsPointsNotGems(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	q := f.questions[0]
	result, err := f.svc.SubmitQuestionAnswer(ctx, f.user.ID, q.ID, correctOption(t, tx, q.ID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct {
		t.Fatalf("expected correct")
	}
	if result.Stats.Points != app.DefaultRewards().PointsPerItem {
		t.Fatalf("expected %d points, got %d", app.DefaultRewards().PointsPerItem, result.Stats.Points)
	}
	if result.Stats.Gems != 3 {
		t.Fatalf("first pass must not grant gems, got %d", result.Stats.Gems)
	}
	if result.Progress == nil || result.Progress.QuestionsCompleted != 1 {
		t.Fatalf("expected counter 1, got %+v", result.Progress)
	}
}

func TestCorrectReplayGrantsPracticeGem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	// Move the pointer to the timed drill so the untimed one is a replay.
	if err := tx.Model(&types.CourseProgress{}).
		Where("user_id = ?", f.user.ID).
		Update("current_drill_id", f.drills[1].ID).Error; err != nil {
		t.Fatalf("move pointer: %v", err)
	}

	q := f.questions[0]
	result, err := f.svc.SubmitQuestionAnswer(ctx, f.user.ID, q.ID, correctOption(t, tx, q.ID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Stats.Gems != 4 {
		t.Fatalf("expected practice gem, got %d", result.Stats.Gems)
	}
	if result.Stats.Points != app.DefaultRewards().PointsPerItem {
		t.Fatalf("expected points on replay too, got %d", result.Stats.Points)
	}
	if result.Progress != nil {
		t.Fatalf("replay must not touch position")
	}
}

func TestWrongFirstPassDeductsGem(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	q := f.questions[0]
	result, err := f.svc.SubmitQuestionAnswer(ctx, f.user.ID, q.ID, wrongOption(t, tx, q.ID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Correct {
		t.Fatalf("expected wrong")
	}
	if result.Stats.Gems != 2 {
		t.Fatalf("expected gem deducted, got %d", result.Stats.Gems)
	}
}

func TestWrongAnswerAtZeroGemsIsRejected(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 0)
	q := f.questions[0]
	_, err := f.svc.SubmitQuestionAnswer(ctx, f.user.ID, q.ID, wrongOption(t, tx, q.ID))
	if !errors.Is(err, apperrors.ErrInsufficientGems) {
		t.Fatalf("expected ErrInsufficientGems, got %v", err)
	}

	stats, err := f.stats.GetByUserID(ctx, tx, f.user.ID)
	if err != nil {
		t.Fatalf("reload stats: %v", err)
	}
	if stats.Gems != 0 || stats.Points != 0 {
		t.Fatalf("rejected event must not mutate the row")
	}
}

func TestSubscriberWrongAnswerCostsNothing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	testutil.SeedSubscription(t, ctx, tx, f.user.ID, time.Now().Add(24*time.Hour))

	q := f.questions[0]
	result, err := f.svc.SubmitQuestionAnswer(ctx, f.user.ID, q.ID, wrongOption(t, tx, q.ID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Stats != nil {
		t.Fatalf("subscribed wrong answer must not reach the ledger")
	}

	stats, err := f.stats.GetByUserID(ctx, tx, f.user.ID)
	if err != nil {
		t.Fatalf("reload stats: %v", err)
	}
	if stats.Gems != 3 {
		t.Fatalf("expected gems untouched, got %d", stats.Gems)
	}
}

func TestTimedAnswersNeverTouchTheLedger(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	q := f.questions[3] // belongs to the timed drill
	result, err := f.svc.SubmitQuestionAnswer(ctx, f.user.ID, q.ID, wrongOption(t, tx, q.ID))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Stats != nil {
		t.Fatalf("timed answers settle at completion, not per answer")
	}

	stats, err := f.stats.GetByUserID(ctx, tx, f.user.ID)
	if err != nil {
		t.Fatalf("reload stats: %v", err)
	}
	if stats.Gems != 3 || stats.Points != 0 {
		t.Fatalf("timed answer mutated the ledger: %+v", stats)
	}
}

func TestTimedCompletionBonusAtThreshold(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	// Position the user on the timed drill.
	if err := tx.Model(&types.CourseProgress{}).
		Where("user_id = ?", f.user.ID).
		Update("current_drill_id", f.drills[1].ID).Error; err != nil {
		t.Fatalf("move pointer: %v", err)
	}

	result, err := f.svc.CompleteDrill(ctx, f.user.ID, f.drills[1].ID, 100)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !result.Passed {
		t.Fatalf("expected pass at threshold")
	}
	if result.Stats.Points != app.DefaultRewards().TimedBonusPoints {
		t.Fatalf("expected bonus %d, got %d", app.DefaultRewards().TimedBonusPoints, result.Stats.Points)
	}
	if result.Stats.Gems != 3 {
		t.Fatalf("timed completion must not touch gems, got %d", result.Stats.Gems)
	}
}

func TestTimedCompletionBelowThresholdMutatesNothing(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	result, err := f.svc.CompleteDrill(ctx, f.user.ID, f.drills[1].ID, 90)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if result.Passed {
		t.Fatalf("90%% must not pass")
	}
	if result.Stats != nil {
		t.Fatalf("failed timed run must not reach the ledger")
	}

	stats, err := f.stats.GetByUserID(ctx, tx, f.user.ID)
	if err != nil {
		t.Fatalf("reload stats: %v", err)
	}
	if stats.Points != 0 || stats.Gems != 3 {
		t.Fatalf("failed timed run mutated the ledger: %+v", stats)
	}
}

func TestPracticeChallengeGrantsGemAndFlipsCompleted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	exercise := testutil.SeedExercise(t, ctx, tx, 1, 1, false)
	challenge := testutil.SeedChallenge(t, ctx, tx, exercise.ID, 1)

	// A row with completed=false marks a practice re-attempt in progress.
	if err := tx.Create(&types.ChallengeProgress{
		ID:          uuid.New(),
		UserID:      f.user.ID,
		ChallengeID: challenge.ID,
		Completed:   false,
	}).Error; err != nil {
		t.Fatalf("seed challenge progress: %v", err)
	}

	var opt types.ChallengeOption
	if err := tx.Where("challenge_id = ? AND is_correct = ?", challenge.ID, true).First(&opt).Error; err != nil {
		t.Fatalf("load option: %v", err)
	}

	result, err := f.svc.SubmitChallengeAnswer(ctx, f.user.ID, challenge.ID, opt.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Stats.Gems != 4 {
		t.Fatalf("practice success must grant a gem, got %d", result.Stats.Gems)
	}
	if result.Stats.Points != app.DefaultRewards().PointsPerItem {
		t.Fatalf("expected points, got %d", result.Stats.Points)
	}

	var row types.ChallengeProgress
	if err := tx.Where("user_id = ? AND challenge_id = ?", f.user.ID, challenge.ID).First(&row).Error; err != nil {
		t.Fatalf("reload challenge progress: %v", err)
	}
	if !row.Completed {
		t.Fatalf("expected completed flipped true")
	}
}

func TestFirstChallengeAttemptAwardsPointsOnly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	f := seedAnswer(t, ctx, tx, 3)
	exercise := testutil.SeedExercise(t, ctx, tx, 1, 1, false)
	challenge := testutil.SeedChallenge(t, ctx, tx, exercise.ID, 1)

	var opt types.ChallengeOption
	if err := tx.Where("challenge_id = ? AND is_correct = ?", challenge.ID, true).First(&opt).Error; err != nil {
		t.Fatalf("load option: %v", err)
	}

	result, err := f.svc.SubmitChallengeAnswer(ctx, f.user.ID, challenge.ID, opt.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Stats.Gems != 3 {
		t.Fatalf("first attempt must not grant a gem, got %d", result.Stats.Gems)
	}
	if result.Stats.Points != app.DefaultRewards().PointsPerItem {
		t.Fatalf("expected points, got %d", result.Stats.Points)
	}
}
