package learning

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/triviumlab/trivium-backend/internal/data/repos/testutil"
	types "github.com/triviumlab/trivium-backend/internal/domain"
)

func TestCourseProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCourseProgressRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "progressrepo@example.com")
	course := testutil.SeedCourse(t, ctx, tx, "course")
	unit := testutil.SeedUnit(t, ctx, tx, course.ID, 1, 1)
	drill := testutil.SeedDrill(t, ctx, tx, unit.ID, 1, 1, false)
	next := testutil.SeedDrill(t, ctx, tx, unit.ID, 2, 2, false)

	got, err := repo.GetByUserAndCourse(ctx, tx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCourse (missing): %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing row")
	}

	entry := testutil.SeedCourseProgress(t, ctx, tx, user.ID, course.ID, drill.ID, 2)

	got, err = repo.GetByUserAndCourse(ctx, tx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCourse: %v", err)
	}
	if got == nil || got.CurrentDrillID != drill.ID || got.QuestionsCompleted != 2 {
		t.Fatalf("unexpected row: %+v", got)
	}

	if err := repo.Update(ctx, tx, entry.ID, map[string]any{
		"current_drill_id":    next.ID,
		"questions_completed": 0,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByUserAndCourseForUpdate(ctx, tx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("GetByUserAndCourseForUpdate: %v", err)
	}
	if got.CurrentDrillID != next.ID || got.QuestionsCompleted != 0 {
		t.Fatalf("update not applied: %+v", got)
	}
}

func TestChallengeProgressUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewChallengeProgressRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "chprogressrepo@example.com")
	exercise := testutil.SeedExercise(t, ctx, tx, 1, 1, false)
	challenge := testutil.SeedChallenge(t, ctx, tx, exercise.ID, 1)

	row := &types.ChallengeProgress{
		ID:          uuid.New(),
		UserID:      user.ID,
		ChallengeID: challenge.ID,
		Completed:   false,
	}
	if err := repo.Upsert(ctx, tx, row); err != nil {
		t.Fatalf("Upsert (insert): %v", err)
	}

	flipped := &types.ChallengeProgress{
		ID:          uuid.New(),
		UserID:      user.ID,
		ChallengeID: challenge.ID,
		Completed:   true,
	}
	if err := repo.Upsert(ctx, tx, flipped); err != nil {
		t.Fatalf("Upsert (conflict): %v", err)
	}

	got, err := repo.GetByUserAndChallenge(ctx, tx, user.ID, challenge.ID)
	if err != nil {
		t.Fatalf("GetByUserAndChallenge: %v", err)
	}
	if got == nil || !got.Completed {
		t.Fatalf("expected completed=true, got %+v", got)
	}

	var count int64
	if err := tx.Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ?", user.ID, challenge.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row per (user, challenge), got %d", count)
	}
}

func TestCourseCompletionCreateIfAbsent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewCourseCompletionRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "completionrepo@example.com")
	course := testutil.SeedCourse(t, ctx, tx, "course")

	for i := 0; i < 2; i++ {
		completion := &types.CourseCompletion{
			ID:          uuid.New(),
			UserID:      user.ID,
			CourseID:    course.ID,
			CompletedAt: time.Now().UTC(),
		}
		if err := repo.CreateIfAbsent(ctx, tx, completion); err != nil {
			t.Fatalf("CreateIfAbsent #%d: %v", i, err)
		}
	}

	exists, err := repo.Exists(ctx, tx, user.ID, course.ID)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected completion to exist")
	}

	all, err := repo.GetByUserID(ctx, tx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one completion, got %d", len(all))
	}
}
