package domain

import (
	"time"

	"github.com/google/uuid"
)

// The course tree is static, read-only content: Course -> Unit -> Drill ->
// Question. Within a parent, Order values are unique and define traversal
// order; UnitNumber/DrillNumber are the stable human-facing ordinals.

type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

type Unit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unit_course_order;column:course_id" json:"course_id"`
	UnitNumber  int       `gorm:"not null;column:unit_number" json:"unit_number"`
	Order       int       `gorm:"not null;uniqueIndex:idx_unit_course_order;column:position" json:"order"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Unit) TableName() string { return "unit" }

type Drill struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_drill_unit_order;column:unit_id" json:"unit_id"`
	DrillNumber int       `gorm:"not null;column:drill_number" json:"drill_number"`
	Order       int       `gorm:"not null;uniqueIndex:idx_drill_unit_order;column:position" json:"order"`
	Title       string    `gorm:"not null;column:title" json:"title"`

	// IsTimed switches completion, scoring and reward policy: timed drills
	// never touch gems and only award a fixed bonus at the pass threshold.
	IsTimed bool `gorm:"not null;default:false;column:is_timed" json:"is_timed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Drill) TableName() string { return "drill" }

type Question struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DrillID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_question_drill_order;column:drill_id" json:"drill_id"`
	Order       int       `gorm:"not null;uniqueIndex:idx_question_drill_order;column:position" json:"order"`
	Prompt      string    `gorm:"not null;column:prompt" json:"prompt"`
	Explanation string    `gorm:"column:explanation" json:"explanation"`

	Options []QuestionOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Question) TableName() string { return "question" }

type QuestionOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index;column:question_id" json:"question_id"`
	Order      int       `gorm:"not null;column:position" json:"order"`
	Text       string    `gorm:"not null;column:text" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false;column:is_correct" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestionOption) TableName() string { return "question_option" }
