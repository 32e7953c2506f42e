package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/triviumlab/trivium-backend/internal/data/repos/testutil"
	types "github.com/triviumlab/trivium-backend/internal/domain"
)

func TestSessionAssignmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewSessionAssignmentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	user := testutil.SeedUser(t, ctx, tx, "assignmentrepo@example.com")
	contentID := uuid.New()

	got, err := repo.Get(ctx, tx, user.ID, contentID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("Get (missing): %v", err)
	}
	if got != nil {
		t.Fatalf("Get (missing): expected nil, got %+v", got)
	}

	first := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	assignment := &types.SessionAssignment{
		ID:          uuid.New(),
		UserID:      user.ID,
		ContentID:   contentID,
		Purpose:     types.PurposeNormal,
		ContentKind: types.ContentKindDrill,
	}
	if err := assignment.SetItemIDs(first); err != nil {
		t.Fatalf("SetItemIDs: %v", err)
	}
	if err := repo.Upsert(ctx, tx, assignment); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err = repo.Get(ctx, tx, user.ID, contentID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	ids, err := got.DecodeItemIDs()
	if err != nil {
		t.Fatalf("DecodeItemIDs: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	for i := range first {
		if ids[i] != first[i] {
			t.Fatalf("order not preserved at %d", i)
		}
	}

	// Same (user, content, purpose) key: the list is replaced, not appended.
	second := []uuid.UUID{uuid.New()}
	replacement := &types.SessionAssignment{
		ID:          uuid.New(),
		UserID:      user.ID,
		ContentID:   contentID,
		Purpose:     types.PurposeNormal,
		ContentKind: types.ContentKindDrill,
	}
	if err := replacement.SetItemIDs(second); err != nil {
		t.Fatalf("SetItemIDs: %v", err)
	}
	if err := repo.Upsert(ctx, tx, replacement); err != nil {
		t.Fatalf("Upsert (conflict): %v", err)
	}

	got, err = repo.Get(ctx, tx, user.ID, contentID, types.PurposeNormal)
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	ids, err = got.DecodeItemIDs()
	if err != nil {
		t.Fatalf("DecodeItemIDs after overwrite: %v", err)
	}
	if len(ids) != 1 || ids[0] != second[0] {
		t.Fatalf("expected overwritten list, got %v", ids)
	}

	var count int64
	if err := tx.Model(&types.SessionAssignment{}).
		Where("user_id = ? AND content_id = ?", user.ID, contentID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per key, got %d", count)
	}

	// A practice assignment for the same content is a separate row.
	practice := &types.SessionAssignment{
		ID:          uuid.New(),
		UserID:      user.ID,
		ContentID:   contentID,
		Purpose:     types.PurposePractice,
		ContentKind: types.ContentKindDrill,
	}
	if err := practice.SetItemIDs(first); err != nil {
		t.Fatalf("SetItemIDs (practice): %v", err)
	}
	if err := repo.Upsert(ctx, tx, practice); err != nil {
		t.Fatalf("Upsert (practice): %v", err)
	}
	got, err = repo.Get(ctx, tx, user.ID, contentID, types.PurposePractice)
	if err != nil {
		t.Fatalf("Get (practice): %v", err)
	}
	if got == nil {
		t.Fatalf("expected practice assignment")
	}
}
