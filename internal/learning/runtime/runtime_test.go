package runtime

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func itemIDs(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestUntimedWrongAnswerRetriesSameItem(t *testing.T) {
	items := itemIDs(2)
	s := New(items, false)

	first, err := s.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if err := s.Answer(false); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if s.Status != StatusWrong {
		t.Fatalf("expected wrong, got %s", s.Status)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	again, err := s.Current()
	if err != nil {
		t.Fatalf("current after retry: %v", err)
	}
	if again != first {
		t.Fatalf("expected retry of the same item")
	}
	if s.Status != StatusNone {
		t.Fatalf("expected none after retry, got %s", s.Status)
	}
}

func TestUntimedCorrectAnswerAdvances(t *testing.T) {
	items := itemIDs(2)
	s := New(items, false)

	if err := s.Answer(true); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if s.Status != StatusCorrect {
		t.Fatalf("expected correct, got %s", s.Status)
	}
	// Feedback is showing; answering again before continue is rejected.
	if err := s.Answer(true); !errors.Is(err, ErrNotAnswerable) {
		t.Fatalf("expected ErrNotAnswerable, got %v", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	cur, err := s.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur != items[1] {
		t.Fatalf("expected second item")
	}
}

func TestTimedWrongAnswerStillAdvances(t *testing.T) {
	items := itemIDs(3)
	s := New(items, true)

	for i, correct := range []bool{false, true, false} {
		if err := s.Answer(correct); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if err := s.Advance(); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}
	if s.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.AttemptCount != 3 || s.CorrectCount != 1 {
		t.Fatalf("expected 1/3, got %d/%d", s.CorrectCount, s.AttemptCount)
	}
	if got := s.ScorePercentage(); got != 33 {
		t.Fatalf("expected score 33, got %d", got)
	}
}

func TestPerfectTimedRunScoresHundred(t *testing.T) {
	s := New(itemIDs(4), true)
	for s.Status != StatusCompleted {
		if err := s.Answer(true); err != nil {
			t.Fatalf("answer: %v", err)
		}
		if err := s.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
	if got := s.ScorePercentage(); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}

func TestCompletionEventFiresOnce(t *testing.T) {
	s := New(itemIDs(1), false)
	if s.ShouldSendCompletion() {
		t.Fatalf("completion owed before the session finished")
	}
	if err := s.Answer(true); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := s.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !s.ShouldSendCompletion() {
		t.Fatalf("expected completion to be owed")
	}
	if s.ShouldSendCompletion() {
		t.Fatalf("completion fired twice")
	}
}

func TestEmptySessionIsBornCompleted(t *testing.T) {
	s := New(nil, false)
	if s.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if _, err := s.Current(); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
	if err := s.Answer(true); !errors.Is(err, ErrCompleted) {
		t.Fatalf("expected ErrCompleted, got %v", err)
	}
}

func TestApplyThenMaybeRevert(t *testing.T) {
	state := LocalState{Gems: 2, Points: 50, ItemsCompleted: 3}
	delta := Delta{Gems: -1, Points: 10, ItemsCompleted: 1}

	next, err := ApplyThenMaybeRevert(state, delta, func(optimistic LocalState) error {
		if optimistic.Gems != 1 || optimistic.Points != 60 || optimistic.ItemsCompleted != 4 {
			t.Fatalf("unexpected optimistic state: %+v", optimistic)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if next.Gems != 1 || next.Points != 60 || next.ItemsCompleted != 4 {
		t.Fatalf("confirmed state not kept: %+v", next)
	}

	rejected := errors.New("insufficient_gems")
	reverted, err := ApplyThenMaybeRevert(next, Delta{Gems: -5}, func(LocalState) error {
		return rejected
	})
	if !errors.Is(err, rejected) {
		t.Fatalf("expected server error back, got %v", err)
	}
	if reverted != next {
		t.Fatalf("expected pre-optimistic state back, got %+v", reverted)
	}
}

func TestClampBoundsLocalState(t *testing.T) {
	s := LocalState{Gems: 9, Points: -3, ItemsCompleted: -1}.Clamp(5)
	if s.Gems != 5 || s.Points != 0 || s.ItemsCompleted != 0 {
		t.Fatalf("clamp mismatch: %+v", s)
	}
}
