package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/triviumlab/trivium-backend/internal/http/handlers"
	httpMW "github.com/triviumlab/trivium-backend/internal/http/middleware"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	CourseHandler      *httpH.CourseHandler
	SessionHandler     *httpH.SessionHandler
	AnswerHandler      *httpH.AnswerHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	HealthHandler      *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("trivium"))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.POST("/courses/:id/activate", cfg.UserHandler.ActivateCourse)
		}

		// Content tree
		if cfg.CourseHandler != nil {
			protected.GET("/courses", cfg.CourseHandler.ListCourses)
			protected.GET("/courses/:id/units", cfg.CourseHandler.GetCourseTree)
			protected.GET("/exercises", cfg.CourseHandler.ListExercises)
		}

		// Sessions
		if cfg.SessionHandler != nil {
			protected.GET("/courses/:id/units/:unitNumber/drills/:drillNumber/session", cfg.SessionHandler.StartDrillSession)
			protected.GET("/exercises/:id/session", cfg.SessionHandler.StartExerciseSession)
		}

		// Answers and completions
		if cfg.AnswerHandler != nil {
			protected.POST("/answers/question", cfg.AnswerHandler.SubmitQuestionAnswer)
			protected.POST("/answers/challenge", cfg.AnswerHandler.SubmitChallengeAnswer)
			protected.POST("/drills/:id/complete", cfg.AnswerHandler.CompleteDrill)
			protected.POST("/exercises/:id/complete", cfg.AnswerHandler.CompleteExercise)
		}

		// Leaderboard
		if cfg.LeaderboardHandler != nil {
			protected.GET("/leaderboard", cfg.LeaderboardHandler.Top)
		}
	}

	return r
}
