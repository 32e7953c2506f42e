package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSubscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, periodEnd time.Time) *types.Subscription {
	tb.Helper()
	s := &types.Subscription{
		ID:               uuid.New(),
		UserID:           userID,
		CurrentPeriodEnd: periodEnd,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subscription: %v", err)
	}
	return s
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, title string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:    uuid.New(),
		Title: title,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedUnit(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, number, order int) *types.Unit {
	tb.Helper()
	u := &types.Unit{
		ID:         uuid.New(),
		CourseID:   courseID,
		UnitNumber: number,
		Order:      order,
		Title:      fmt.Sprintf("unit %d", number),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed unit: %v", err)
	}
	return u
}

func SeedDrill(tb testing.TB, ctx context.Context, tx *gorm.DB, unitID uuid.UUID, number, order int, isTimed bool) *types.Drill {
	tb.Helper()
	d := &types.Drill{
		ID:          uuid.New(),
		UnitID:      unitID,
		DrillNumber: number,
		Order:       order,
		Title:       fmt.Sprintf("drill %d", number),
		IsTimed:     isTimed,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed drill: %v", err)
	}
	return d
}

func SeedQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, drillID uuid.UUID, order int) *types.Question {
	tb.Helper()
	q := &types.Question{
		ID:      uuid.New(),
		DrillID: drillID,
		Order:   order,
		Prompt:  fmt.Sprintf("question %d", order),
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	for i := 0; i < 3; i++ {
		opt := &types.QuestionOption{
			ID:         uuid.New(),
			QuestionID: q.ID,
			Order:      i,
			Text:       fmt.Sprintf("option %d", i),
			IsCorrect:  i == 0,
		}
		if err := tx.WithContext(ctx).Create(opt).Error; err != nil {
			tb.Fatalf("seed question option: %v", err)
		}
	}
	return q
}

func SeedExercise(tb testing.TB, ctx context.Context, tx *gorm.DB, number, order int, isTimed bool) *types.Exercise {
	tb.Helper()
	e := &types.Exercise{
		ID:             uuid.New(),
		ExerciseNumber: number,
		Order:          order,
		Title:          fmt.Sprintf("exercise %d", number),
		IsTimed:        isTimed,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed exercise: %v", err)
	}
	return e
}

func SeedChallenge(tb testing.TB, ctx context.Context, tx *gorm.DB, exerciseID uuid.UUID, order int) *types.Challenge {
	tb.Helper()
	c := &types.Challenge{
		ID:         uuid.New(),
		ExerciseID: exerciseID,
		Order:      order,
		Prompt:     fmt.Sprintf("challenge %d", order),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed challenge: %v", err)
	}
	for i := 0; i < 3; i++ {
		opt := &types.ChallengeOption{
			ID:          uuid.New(),
			ChallengeID: c.ID,
			Order:       i,
			Text:        fmt.Sprintf("option %d", i),
			IsCorrect:   i == 0,
		}
		if err := tx.WithContext(ctx).Create(opt).Error; err != nil {
			tb.Fatalf("seed challenge option: %v", err)
		}
	}
	return c
}

func SeedUserStats(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, gems, points int) *types.UserStats {
	tb.Helper()
	s := &types.UserStats{
		ID:     uuid.New(),
		UserID: userID,
		Gems:   gems,
		Points: points,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed user stats: %v", err)
	}
	return s
}

func SeedCourseProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID, currentDrillID uuid.UUID, questionsCompleted int) *types.CourseProgress {
	tb.Helper()
	p := &types.CourseProgress{
		ID:                 uuid.New(),
		UserID:             userID,
		CourseID:           courseID,
		CurrentDrillID:     currentDrillID,
		QuestionsCompleted: questionsCompleted,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed course progress: %v", err)
	}
	return p
}
