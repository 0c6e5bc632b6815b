// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz        QuizConfig        `toml:"quiz"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
}

// QuizConfig maps quiz-related settings.
type QuizConfig struct {
	Set              *string `toml:"set"`
	Catalog          *string `toml:"catalog"`
	MaxAttempts      *int    `toml:"max-attempts"`
	MasteryThreshold *int    `toml:"mastery-threshold"`
	WordsPerRound    *int    `toml:"words-per-round"`
	Engine           *string `toml:"engine"`
	Voice            *string `toml:"voice"`
	Rate             *int    `toml:"rate"`
	SlowRate         *int    `toml:"slow-rate"`
	Mute             *bool   `toml:"mute"`
}

// LeaderboardConfig maps score board settings.
type LeaderboardConfig struct {
	Backend       *string `toml:"backend"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
	Nickname      *string `toml:"nickname"`
}

// Board backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendOff    = "off"
)

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ValidBackend reports whether name is a known board backend.
func ValidBackend(name string) bool {
	switch name {
	case BackendSQLite, BackendRedis, BackendOff:
		return true
	default:
		return false
	}
}
