package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/triviumlab/trivium-backend/internal/platform/envutil"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens Postgres when POSTGRES_HOST is configured, otherwise falls
// back to a local sqlite file so the server runs without infrastructure.
func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormCfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	host := envutil.GetEnv("POSTGRES_HOST", "", logg)
	if host == "" {
		path := envutil.GetEnv("SQLITE_PATH", "trivium.db", logg)
		serviceLog.Warn("POSTGRES_HOST not set, using sqlite", "path", path)
		sqliteDB, err := gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return &Service{db: sqliteDB, log: serviceLog}, nil
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envutil.GetEnv("POSTGRES_USER", "postgres", logg),
		envutil.GetEnv("POSTGRES_PASSWORD", "", logg),
		host,
		envutil.GetEnv("POSTGRES_PORT", "5432", logg),
		envutil.GetEnv("POSTGRES_NAME", "trivium", logg),
	)
	pgDB, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &Service{db: pgDB, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
