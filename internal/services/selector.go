package services

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/triviumlab/trivium-backend/internal/app"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	types "github.com/triviumlab/trivium-backend/internal/domain"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

// SelectorService picks the bounded, order-stable item subset a learner
// sees in one session. Normal sessions resume a previously persisted
// subset (so a page reload mid-attempt shows the same items); practice
// sessions always draw fresh.
type SelectorService interface {
	SelectQuestions(ctx context.Context, tx *gorm.DB, userID, drillID uuid.UUID, purpose string) ([]uuid.UUID, error)
	SelectChallenges(ctx context.Context, tx *gorm.DB, userID, exerciseID uuid.UUID, purpose string) ([]uuid.UUID, error)
}

type selectorService struct {
	db          *gorm.DB
	log         *logger.Logger
	rewards     app.Rewards
	questions   learningrepos.QuestionRepo
	challenges  learningrepos.ChallengeRepo
	assignments learningrepos.SessionAssignmentRepo
}

func NewSelectorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	rewards app.Rewards,
	questionRepo learningrepos.QuestionRepo,
	challengeRepo learningrepos.ChallengeRepo,
	assignmentRepo learningrepos.SessionAssignmentRepo,
) SelectorService {
	return &selectorService{
		db:          db,
		log:         baseLog.With("service", "SelectorService"),
		rewards:     rewards,
		questions:   questionRepo,
		challenges:  challengeRepo,
		assignments: assignmentRepo,
	}
}

func (s *selectorService) SelectQuestions(ctx context.Context, tx *gorm.DB, userID, drillID uuid.UUID, purpose string) ([]uuid.UUID, error) {
	questions, err := s.questions.GetByDrillIDs(ctx, tx, []uuid.UUID{drillID})
	if err != nil {
		return nil, fmt.Errorf("load drill questions: %w", err)
	}
	children := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		children = append(children, q.ID)
	}
	return s.selectSubset(ctx, tx, userID, drillID, types.ContentKindDrill, purpose, children)
}

func (s *selectorService) SelectChallenges(ctx context.Context, tx *gorm.DB, userID, exerciseID uuid.UUID, purpose string) ([]uuid.UUID, error) {
	challenges, err := s.challenges.GetByExerciseIDs(ctx, tx, []uuid.UUID{exerciseID})
	if err != nil {
		return nil, fmt.Errorf("load exercise challenges: %w", err)
	}
	children := make([]uuid.UUID, 0, len(challenges))
	for _, c := range challenges {
		children = append(children, c.ID)
	}
	return s.selectSubset(ctx, tx, userID, exerciseID, types.ContentKindExercise, purpose, children)
}

func (s *selectorService) selectSubset(ctx context.Context, tx *gorm.DB, userID, contentID uuid.UUID, kind, purpose string, children []uuid.UUID) ([]uuid.UUID, error) {
	if purpose != types.PurposeNormal && purpose != types.PurposePractice {
		return nil, fmt.Errorf("unknown session purpose %q", purpose)
	}

	// Content with no children means "nothing to present", not an error.
	if len(children) == 0 {
		return []uuid.UUID{}, nil
	}

	if purpose == types.PurposeNormal {
		existing, err := s.assignments.Get(ctx, tx, userID, contentID, purpose)
		if err != nil {
			return nil, fmt.Errorf("load session assignment: %w", err)
		}
		if existing != nil {
			ids, decErr := existing.DecodeItemIDs()
			if decErr != nil {
				s.log.Warn("discarding undecodable assignment", "user_id", userID, "content_id", contentID, "error", decErr)
			} else if len(ids) > 0 && subsetOf(ids, children) {
				return ids, nil
			}
			// Stale (content was edited) or empty: fall through and redraw.
		}
	}

	sample := sampleItems(children, s.rewards.SessionSize)
	assignment := &types.SessionAssignment{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   contentID,
		Purpose:     purpose,
		ContentKind: kind,
	}
	if err := assignment.SetItemIDs(sample); err != nil {
		return nil, fmt.Errorf("encode item ids: %w", err)
	}
	if err := s.assignments.Upsert(ctx, tx, assignment); err != nil {
		return nil, fmt.Errorf("persist session assignment: %w", err)
	}
	return sample, nil
}

// sampleItems draws up to k items uniformly without replacement. The
// returned order is the session order and gets persisted as-is.
func sampleItems(children []uuid.UUID, k int) []uuid.UUID {
	if k > len(children) {
		k = len(children)
	}
	perm := rand.Perm(len(children))
	out := make([]uuid.UUID, 0, k)
	for _, idx := range perm[:k] {
		out = append(out, children[idx])
	}
	return out
}

// subsetOf reports whether every id is still among the current children.
func subsetOf(ids, children []uuid.UUID) bool {
	present := make(map[uuid.UUID]struct{}, len(children))
	for _, c := range children {
		present[c] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			return false
		}
	}
	return true
}
