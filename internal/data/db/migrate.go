package db

import (
	"gorm.io/gorm"

	types "github.com/triviumlab/trivium-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Subscription{},

		&types.Course{},
		&types.Unit{},
		&types.Drill{},
		&types.Question{},
		&types.QuestionOption{},

		&types.Exercise{},
		&types.Challenge{},
		&types.ChallengeOption{},

		&types.UserStats{},
		&types.CourseProgress{},
		&types.CourseCompletion{},
		&types.ChallengeProgress{},
		&types.SessionAssignment{},
	)
}
