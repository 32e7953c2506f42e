package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserStats is the per-user resource ledger: bounded gems, monotonic
// points, and day-granular streak counters. One row per user, created on
// first course activation, mutated only inside the ledger transaction.
type UserStats struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`

	Gems          int `gorm:"not null;default:0;column:gems" json:"gems"`
	Points        int `gorm:"not null;default:0;column:points" json:"points"`
	CurrentStreak int `gorm:"not null;default:0;column:current_streak" json:"current_streak"`
	LongestStreak int `gorm:"not null;default:0;column:longest_streak" json:"longest_streak"`

	// LastActivityDate is calendar-day granular; nil until the first full
	// completion.
	LastActivityDate *time.Time `gorm:"type:date;column:last_activity_date" json:"last_activity_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserStats) TableName() string { return "user_stats" }

// CourseProgress is the per-user, per-course progress ledger: the pointer
// to the current drill and the running count of questions completed inside
// it. QuestionsCompleted is only meaningful for the current, untimed drill.
type CourseProgress struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_progress_user_course;column:user_id" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_progress_user_course;column:course_id" json:"course_id"`

	CurrentDrillID     uuid.UUID `gorm:"type:uuid;not null;column:current_drill_id" json:"current_drill_id"`
	QuestionsCompleted int       `gorm:"not null;default:0;column:questions_completed" json:"questions_completed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }

// CourseCompletion is appended exactly once per user+course when the
// advancement cascade runs out of units.
type CourseCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_completion_user_course;column:user_id" json:"user_id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_completion_user_course;column:course_id" json:"course_id"`
	CompletedAt time.Time `gorm:"not null;column:completed_at" json:"completed_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CourseCompletion) TableName() string { return "course_completion" }

// ChallengeProgress marks per-challenge completion in the exercise tree.
// A row with Completed=false signals a practice re-attempt in progress;
// no row at all means a first attempt.
type ChallengeProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_progress_user_challenge;column:user_id" json:"user_id"`
	ChallengeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_progress_user_challenge;column:challenge_id" json:"challenge_id"`
	Completed   bool      `gorm:"not null;default:false;column:completed" json:"completed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ChallengeProgress) TableName() string { return "challenge_progress" }
