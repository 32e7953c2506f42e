package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

const leaderboardKey = "leaderboard:points"

type LeaderboardEntry struct {
	UserID uuid.UUID `json:"user_id"`
	Points int       `json:"points"`
}

// LeaderboardService mirrors the points balance into a redis sorted set.
// It is advisory: the stats row is the source of truth, so updates are
// best-effort and failures only log.
type LeaderboardService interface {
	AddPoints(ctx context.Context, userID uuid.UUID, delta int) error
	Top(ctx context.Context, n int) ([]LeaderboardEntry, error)
}

type leaderboardService struct {
	log *logger.Logger
	rdb *goredis.Client
}

// NewLeaderboardService returns nil when addr is empty; callers treat a
// nil leaderboard as "feature off".
func NewLeaderboardService(baseLog *logger.Logger, addr string) (LeaderboardService, error) {
	if addr == "" {
		return nil, nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &leaderboardService{
		log: baseLog.With("service", "LeaderboardService"),
		rdb: rdb,
	}, nil
}

func (s *leaderboardService) AddPoints(ctx context.Context, userID uuid.UUID, delta int) error {
	return s.rdb.ZIncrBy(ctx, leaderboardKey, float64(delta), userID.String()).Err()
}

func (s *leaderboardService) Top(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	members, err := s.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard range: %w", err)
	}
	entries := make([]LeaderboardEntry, 0, len(members))
	for _, m := range members {
		raw, ok := m.Member.(string)
		if !ok {
			continue
		}
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			s.log.Warn("skipping malformed leaderboard member", "member", raw)
			continue
		}
		entries = append(entries, LeaderboardEntry{UserID: id, Points: int(m.Score)})
	}
	return entries, nil
}
