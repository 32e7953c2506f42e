package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"not null;column:password" json:"-"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`

	// ActiveCourseID is the course whose progression the user is currently
	// driving. Nil until the first course activation.
	ActiveCourseID *uuid.UUID `gorm:"type:uuid;column:active_course_id" json:"active_course_id,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// Subscription is read-only to the engine: billing writes it elsewhere,
// the reward policy only asks whether it is active.
type Subscription struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	CurrentPeriodEnd time.Time `gorm:"not null;column:current_period_end" json:"current_period_end"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }

func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.CurrentPeriodEnd.After(now)
}
