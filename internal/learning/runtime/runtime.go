// Package runtime is the client-side session state machine. It walks one
// item at a time through none -> correct/wrong -> advance, accumulates
// timed-session scoring, and guards the final completion event behind a
// one-shot flag. It is pure: no I/O, no clocks, no goroutines — callers
// own all server communication and feed results back in.
package runtime

import (
	"errors"

	"github.com/google/uuid"
)

type Status string

const (
	// StatusNone means the current item is awaiting an answer.
	StatusNone      Status = "none"
	StatusCorrect   Status = "correct"
	StatusWrong     Status = "wrong"
	StatusCompleted Status = "completed"
)

var (
	ErrNoCurrentItem = errors.New("runtime: no current item")
	ErrNotAnswerable = errors.New("runtime: current item already answered")
	ErrNotAdvancable = errors.New("runtime: no pending answer to advance from")
	ErrCompleted     = errors.New("runtime: session already completed")
)

// Session is the in-memory state of one drill or exercise attempt.
type Session struct {
	Items   []uuid.UUID
	IsTimed bool

	Index  int
	Status Status

	// CorrectCount/AttemptCount feed the final score for timed sessions.
	CorrectCount int
	AttemptCount int

	completionSent bool
}

// New starts a session over the assigned item order. The item list may be
// empty; such a session is born completed.
func New(items []uuid.UUID, isTimed bool) *Session {
	s := &Session{
		Items:   items,
		IsTimed: isTimed,
		Status:  StatusNone,
	}
	if len(items) == 0 {
		s.Status = StatusCompleted
	}
	return s
}

// Current returns the item awaiting interaction.
func (s *Session) Current() (uuid.UUID, error) {
	if s.Status == StatusCompleted {
		return uuid.Nil, ErrCompleted
	}
	if s.Index < 0 || s.Index >= len(s.Items) {
		return uuid.Nil, ErrNoCurrentItem
	}
	return s.Items[s.Index], nil
}

// Answer records the graded outcome for the current item. The session
// stays on the item (showing feedback) until Advance is called.
func (s *Session) Answer(correct bool) error {
	if s.Status == StatusCompleted {
		return ErrCompleted
	}
	if s.Status != StatusNone {
		return ErrNotAnswerable
	}
	s.AttemptCount++
	if correct {
		s.CorrectCount++
		s.Status = StatusCorrect
	} else {
		s.Status = StatusWrong
	}
	return nil
}

// Advance moves past the feedback state. Untimed wrong answers return to
// the same item for a retry; everything else moves to the next item, or
// to the completed state when none remain.
func (s *Session) Advance() error {
	if s.Status == StatusCompleted {
		return ErrCompleted
	}
	if s.Status == StatusNone {
		return ErrNotAdvancable
	}

	if s.Status == StatusWrong && !s.IsTimed {
		s.Status = StatusNone
		return nil
	}

	s.Index++
	if s.Index >= len(s.Items) {
		s.Status = StatusCompleted
		return nil
	}
	s.Status = StatusNone
	return nil
}

// ScorePercentage is the timed-session final score: correct answers over
// attempts, in whole percent. An unattempted session scores 0.
func (s *Session) ScorePercentage() int {
	if s.AttemptCount == 0 {
		return 0
	}
	return s.CorrectCount * 100 / s.AttemptCount
}

// ShouldSendCompletion reports whether the terminal completion event is
// still owed, and marks it sent. Re-renders after the first true call get
// false, so the event fires exactly once per session.
func (s *Session) ShouldSendCompletion() bool {
	if s.Status != StatusCompleted || s.completionSent {
		return false
	}
	s.completionSent = true
	return true
}

// Remaining counts the items not yet passed.
func (s *Session) Remaining() int {
	if s.Index >= len(s.Items) {
		return 0
	}
	return len(s.Items) - s.Index
}
