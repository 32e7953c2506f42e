package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/app"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	"github.com/triviumlab/trivium-backend/internal/data/repos/testutil"
	types "github.com/triviumlab/trivium-backend/internal/domain"
)

func TestSampleItemsBounds(t *testing.T) {
	children := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	sample := sampleItems(children, 6)
	if len(sample) != 3 {
		t.Fatalf("expected all children when k exceeds len, got %d", len(sample))
	}

	sample = sampleItems(children, 2)
	if len(sample) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sample))
	}
	seen := map[uuid.UUID]bool{}
	for _, id := range sample {
		if seen[id] {
			t.Fatalf("duplicate item in sample")
		}
		seen[id] = true
	}
}

func TestSubsetOf(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	if !subsetOf([]uuid.UUID{a, b}, []uuid.UUID{a, b, c}) {
		t.Fatalf("expected subset")
	}
	if subsetOf([]uuid.UUID{a, uuid.New()}, []uuid.UUID{a, b, c}) {
		t.Fatalf("expected stale id to fail the subset check")
	}
}

func newSelector(t *testing.T, tx *gorm.DB) SelectorService {
	t.Helper()
	log := testutil.Logger(t)
	return NewSelectorService(
		tx, log, app.DefaultRewards(),
		learningrepos.NewQuestionRepo(tx, log),
		learningrepos.NewChallengeRepo(tx, log),
		learningrepos.NewSessionAssignmentRepo(tx, log),
	)
}

func TestNormalSelectionIsStableAcrossCalls(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, ctx, tx, "rhetoric")
	unit := testutil.SeedUnit(t, ctx, tx, course.ID, 1, 1)
	drill := testutil.SeedDrill(t, ctx, tx, unit.ID, 1, 1, false)
	for i := 0; i < 10; i++ {
		testutil.SeedQuestion(t, ctx, tx, drill.ID, i)
	}
	user := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev")

	svc := newSelector(t, tx)
	first, err := svc.SelectQuestions(ctx, tx, user.ID, drill.ID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("first select: %v", err)
	}
	if len(first) != app.DefaultRewards().SessionSize {
		t.Fatalf("expected %d items, got %d", app.DefaultRewards().SessionSize, len(first))
	}

	second, err := svc.SelectQuestions(ctx, tx, user.ID, drill.ID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("second select: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length changed between calls")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("normal selection not stable at index %d", i)
		}
	}
}

func TestStaleAssignmentIsRegenerated(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, ctx, tx, "grammar")
	unit := testutil.SeedUnit(t, ctx, tx, course.ID, 1, 1)
	drill := testutil.SeedDrill(t, ctx, tx, unit.ID, 1, 1, false)
	questions := make([]*types.Question, 0, 8)
	for i := 0; i < 8; i++ {
		questions = append(questions, testutil.SeedQuestion(t, ctx, tx, drill.ID, i))
	}
	user := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev")

	svc := newSelector(t, tx)
	first, err := svc.SelectQuestions(ctx, tx, user.ID, drill.ID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("first select: %v", err)
	}

	// Delete one assigned question to simulate a content edit.
	if err := tx.Where("question_id = ?", first[0]).Delete(&types.QuestionOption{}).Error; err != nil {
		t.Fatalf("delete options: %v", err)
	}
	if err := tx.Delete(&types.Question{}, "id = ?", first[0]).Error; err != nil {
		t.Fatalf("delete question: %v", err)
	}
	_ = questions

	second, err := svc.SelectQuestions(ctx, tx, user.ID, drill.ID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("select after edit: %v", err)
	}
	for _, id := range second {
		if id == first[0] {
			t.Fatalf("regenerated assignment still references deleted question")
		}
	}
}

func TestEmptyContentYieldsEmptySubset(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, ctx, tx, "empty")
	unit := testutil.SeedUnit(t, ctx, tx, course.ID, 1, 1)
	drill := testutil.SeedDrill(t, ctx, tx, unit.ID, 1, 1, false)
	user := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev")

	svc := newSelector(t, tx)
	ids, err := svc.SelectQuestions(ctx, tx, user.ID, drill.ID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected empty subset, got %d items", len(ids))
	}
}

func TestPracticeOverwritesPriorAssignment(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	exercise := testutil.SeedExercise(t, ctx, tx, 1, 1, false)
	for i := 0; i < 12; i++ {
		testutil.SeedChallenge(t, ctx, tx, exercise.ID, i)
	}
	user := testutil.SeedUser(t, ctx, tx, uuid.New().String()+"@test.dev")

	svc := newSelector(t, tx)
	if _, err := svc.SelectChallenges(ctx, tx, user.ID, exercise.ID, types.PurposePractice); err != nil {
		t.Fatalf("first practice select: %v", err)
	}
	if _, err := svc.SelectChallenges(ctx, tx, user.ID, exercise.ID, types.PurposePractice); err != nil {
		t.Fatalf("second practice select: %v", err)
	}

	// Practice redraws overwrite, never append: one row per purpose.
	var count int64
	if err := tx.Model(&types.SessionAssignment{}).
		Where("user_id = ? AND content_id = ?", user.ID, exercise.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count assignments: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one assignment row, got %d", count)
	}
}
