package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/triviumlab/trivium-backend/internal/data/repos/testutil"
	types "github.com/triviumlab/trivium-backend/internal/domain"
)

func TestUserStatsRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewUserStatsRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "statsrepo@example.com")

	got, err := repo.GetByUserID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserID (missing): %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing row, got %+v", got)
	}

	created, err := repo.Create(ctx, tx, []*types.UserStats{
		{ID: uuid.New(), UserID: u.ID, Gems: 5},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 row, got %d", len(created))
	}

	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	if err := repo.Update(ctx, tx, created[0].ID, map[string]any{
		"gems":               3,
		"points":             120,
		"current_streak":     2,
		"longest_streak":     4,
		"last_activity_date": today,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err = repo.GetByUserIDForUpdate(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("GetByUserIDForUpdate: %v", err)
	}
	if got.Gems != 3 || got.Points != 120 || got.CurrentStreak != 2 || got.LongestStreak != 4 {
		t.Fatalf("update not applied: %+v", got)
	}
	if got.LastActivityDate == nil || !got.LastActivityDate.Equal(today) {
		t.Fatalf("unexpected last activity date: %v", got.LastActivityDate)
	}
}

func TestSubscriptionIsActive(t *testing.T) {
	now := time.Now()
	active := &types.Subscription{CurrentPeriodEnd: now.Add(time.Hour)}
	if !active.IsActive(now) {
		t.Fatalf("expected active")
	}
	lapsed := &types.Subscription{CurrentPeriodEnd: now.Add(-time.Hour)}
	if lapsed.IsActive(now) {
		t.Fatalf("expected lapsed")
	}
	var missing *types.Subscription
	if missing.IsActive(now) {
		t.Fatalf("nil subscription must be inactive")
	}
}
