package domain

import (
	"time"

	"github.com/google/uuid"
)

// The exercise tree is the course-independent counterpart of the course
// tree: Exercise -> Challenge -> ChallengeOption. Completion here is
// tracked per challenge (ChallengeProgress) rather than by course position.

type Exercise struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExerciseNumber int       `gorm:"not null;column:exercise_number" json:"exercise_number"`
	Order          int       `gorm:"not null;uniqueIndex;column:position" json:"order"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	IsTimed        bool      `gorm:"not null;default:false;column:is_timed" json:"is_timed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Exercise) TableName() string { return "exercise" }

type Challenge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExerciseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_challenge_exercise_order;column:exercise_id" json:"exercise_id"`
	Order       int       `gorm:"not null;uniqueIndex:idx_challenge_exercise_order;column:position" json:"order"`
	Prompt      string    `gorm:"not null;column:prompt" json:"prompt"`
	Explanation string    `gorm:"column:explanation" json:"explanation"`

	Options []ChallengeOption `gorm:"foreignKey:ChallengeID" json:"options,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Challenge) TableName() string { return "challenge" }

type ChallengeOption struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID uuid.UUID `gorm:"type:uuid;not null;index;column:challenge_id" json:"challenge_id"`
	Order       int       `gorm:"not null;column:position" json:"order"`
	Text        string    `gorm:"not null;column:text" json:"text"`
	IsCorrect   bool      `gorm:"not null;default:false;column:is_correct" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ChallengeOption) TableName() string { return "challenge_option" }
