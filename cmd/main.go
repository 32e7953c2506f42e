package main

import (
	"context"
	"fmt"
	"os"

	"github.com/triviumlab/trivium-backend/internal/app"
	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	userrepos "github.com/triviumlab/trivium-backend/internal/data/repos/user"
	"github.com/triviumlab/trivium-backend/internal/data/db"
	httpapi "github.com/triviumlab/trivium-backend/internal/http"
	httpH "github.com/triviumlab/trivium-backend/internal/http/handlers"
	httpMW "github.com/triviumlab/trivium-backend/internal/http/middleware"
	"github.com/triviumlab/trivium-backend/internal/observability"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
	"github.com/triviumlab/trivium-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration...")
	cfg := app.LoadConfig(log)
	rewards := app.LoadRewards(cfg.RewardsPath, log)

	// Tracing
	ctx := context.Background()
	if shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "trivium",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	}); shutdown != nil {
		defer shutdown(ctx)
	}

	// Database
	dbService, err := db.New(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	gdb := dbService.DB()

	// Repos
	log.Info("Setting up repos...")
	userRepo := userrepos.NewUserRepo(gdb, log)
	subscriptionRepo := userrepos.NewSubscriptionRepo(gdb, log)
	statsRepo := userrepos.NewUserStatsRepo(gdb, log)
	courseRepo := learningrepos.NewCourseRepo(gdb, log)
	unitRepo := learningrepos.NewUnitRepo(gdb, log)
	drillRepo := learningrepos.NewDrillRepo(gdb, log)
	questionRepo := learningrepos.NewQuestionRepo(gdb, log)
	exerciseRepo := learningrepos.NewExerciseRepo(gdb, log)
	challengeRepo := learningrepos.NewChallengeRepo(gdb, log)
	progressRepo := learningrepos.NewCourseProgressRepo(gdb, log)
	completionRepo := learningrepos.NewCourseCompletionRepo(gdb, log)
	challengeProgressRepo := learningrepos.NewChallengeProgressRepo(gdb, log)
	assignmentRepo := learningrepos.NewSessionAssignmentRepo(gdb, log)

	// Services
	log.Info("Setting up services...")
	leaderboardService, err := services.NewLeaderboardService(log, cfg.RedisAddr)
	if err != nil {
		log.Warn("Leaderboard init failed, running without it", "error", err)
		leaderboardService = nil
	}
	authService := services.NewAuthService(gdb, log, userRepo, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	ledgerService := services.NewLedgerService(gdb, log, rewards, statsRepo, progressRepo, completionRepo, unitRepo, drillRepo, leaderboardService)
	selectorService := services.NewSelectorService(gdb, log, rewards, questionRepo, challengeRepo, assignmentRepo)
	accessService := services.NewAccessService(gdb, log, userRepo, progressRepo, unitRepo, drillRepo)
	sessionService := services.NewSessionService(gdb, log, accessService, selectorService, ledgerService, questionRepo, challengeRepo, exerciseRepo, challengeProgressRepo, statsRepo)
	answerService := services.NewAnswerService(gdb, log, rewards, questionRepo, challengeRepo, drillRepo, unitRepo, exerciseRepo, progressRepo, challengeProgressRepo, subscriptionRepo, ledgerService)
	userService := services.NewUserService(gdb, log, rewards, userRepo, statsRepo, subscriptionRepo, courseRepo, unitRepo, drillRepo, progressRepo, completionRepo)
	courseService := services.NewCourseService(gdb, log, courseRepo, unitRepo, drillRepo, exerciseRepo, challengeRepo, progressRepo, completionRepo, challengeProgressRepo)

	// HTTP
	log.Info("Setting up HTTP server...")
	server := httpapi.NewServer(httpapi.RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, authService),

		AuthHandler:        httpH.NewAuthHandler(authService),
		UserHandler:        httpH.NewUserHandler(userService),
		CourseHandler:      httpH.NewCourseHandler(courseService),
		SessionHandler:     httpH.NewSessionHandler(sessionService),
		AnswerHandler:      httpH.NewAnswerHandler(answerService),
		LeaderboardHandler: httpH.NewLeaderboardHandler(leaderboardService),
		HealthHandler:      httpH.NewHealthHandler(),
	})

	addr := ":" + cfg.Port
	log.Info("Starting server", "addr", addr)
	if err := server.Run(addr); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
