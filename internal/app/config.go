package app

import (
	"time"

	"github.com/triviumlab/trivium-backend/internal/platform/envutil"
	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

type Config struct {
	JWTSecretKey   string
	AccessTokenTTL time.Duration
	Port           string
	RedisAddr      string
	RewardsPath    string
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTLSeconds := envutil.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	return Config{
		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: time.Duration(accessTokenTTLSeconds) * time.Second,
		Port:           envutil.GetEnv("PORT", "8080", log),
		RedisAddr:      envutil.GetEnv("REDIS_ADDR", "", log),
		RewardsPath:    envutil.GetEnv("REWARDS_CONFIG_PATH", "configs/rewards.yaml", log),
	}
}
