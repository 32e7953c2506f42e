package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/triviumlab/trivium-backend/internal/platform/logger"
)

// Rewards holds the engine constants that gate progression and the
// point/gem economy. Values come from configs/rewards.yaml; missing or
// unreadable files fall back to the defaults below.
type Rewards struct {
	// GemsLimit is the inclusive ceiling on the gem balance.
	GemsLimit int `yaml:"gems_limit"`
	// SessionSize is K: items sampled per session, and the per-drill
	// completion quota for untimed drills.
	SessionSize int `yaml:"session_size"`
	// PassThreshold is the score percentage a timed session must reach
	// to earn its bonus.
	PassThreshold int `yaml:"pass_threshold"`
	// PointsPerItem is awarded per correct answer on untimed content.
	PointsPerItem int `yaml:"points_per_item"`
	// TimedBonusPoints is the single fixed award for a passing timed session.
	TimedBonusPoints int `yaml:"timed_bonus_points"`
	// WrongAnswerGemPenalty is subtracted on a first-pass wrong answer.
	WrongAnswerGemPenalty int `yaml:"wrong_answer_gem_penalty"`
	// PracticeGemReward is granted per correct practice answer.
	PracticeGemReward int `yaml:"practice_gem_reward"`
}

func DefaultRewards() Rewards {
	return Rewards{
		GemsLimit:             5,
		SessionSize:           6,
		PassThreshold:         100,
		PointsPerItem:         10,
		TimedBonusPoints:      20,
		WrongAnswerGemPenalty: 1,
		PracticeGemReward:     1,
	}
}

func LoadRewards(path string, log *logger.Logger) Rewards {
	rw := DefaultRewards()
	raw, err := os.ReadFile(path)
	if err != nil {
		if log != nil {
			log.Warn("rewards config not readable, using defaults", "path", path, "error", err)
		}
		return rw
	}
	if err := yaml.Unmarshal(raw, &rw); err != nil {
		if log != nil {
			log.Warn("rewards config not parseable, using defaults", "path", path, "error", err)
		}
		return DefaultRewards()
	}
	if err := rw.Validate(); err != nil {
		if log != nil {
			log.Warn("rewards config invalid, using defaults", "path", path, "error", err)
		}
		return DefaultRewards()
	}
	return rw
}

func (r Rewards) Validate() error {
	if r.GemsLimit < 1 {
		return fmt.Errorf("gems_limit must be >= 1, got %d", r.GemsLimit)
	}
	if r.SessionSize < 1 {
		return fmt.Errorf("session_size must be >= 1, got %d", r.SessionSize)
	}
	if r.PassThreshold < 0 || r.PassThreshold > 100 {
		return fmt.Errorf("pass_threshold must be in [0,100], got %d", r.PassThreshold)
	}
	if r.WrongAnswerGemPenalty < 0 || r.PracticeGemReward < 0 || r.PointsPerItem < 0 || r.TimedBonusPoints < 0 {
		return fmt.Errorf("reward amounts must be non-negative")
	}
	return nil
}
