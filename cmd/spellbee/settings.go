package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/spellbee/internal/config"
	"github.com/verte-zerg/spellbee/internal/leaderboard"
	"github.com/verte-zerg/spellbee/internal/ledger"
	"github.com/verte-zerg/spellbee/internal/quiz"
	"github.com/verte-zerg/spellbee/internal/speech"
	"github.com/verte-zerg/spellbee/internal/wordset"
)

// loadSettings merges the config file into flags the user did not set.
func loadSettings(cmd *cobra.Command) (appConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return appConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFileConfig(cmd, &settings, fileCfg)
	if err := validateConfig(settings); err != nil {
		return appConfig{}, err
	}
	return settings, nil
}

func applyFileConfig(cmd *cobra.Command, cfg *appConfig, fileCfg config.FileConfig) {
	q := fileCfg.Quiz
	applyStringConfig(cmd, "set", &cfg.Set, q.Set)
	applyStringConfig(cmd, "catalog", &cfg.Catalog, q.Catalog)
	applyIntConfig(cmd, "max-attempts", &cfg.MaxAttempts, q.MaxAttempts)
	applyIntConfig(cmd, "mastery-threshold", &cfg.MasteryThreshold, q.MasteryThreshold)
	applyIntConfig(cmd, "words", &cfg.WordsPerRound, q.WordsPerRound)
	applyStringConfig(cmd, "engine", &cfg.Engine, q.Engine)
	applyStringConfig(cmd, "voice", &cfg.Voice, q.Voice)
	applyIntConfig(cmd, "rate", &cfg.Rate, q.Rate)
	applyIntConfig(cmd, "slow-rate", &cfg.SlowRate, q.SlowRate)
	applyBoolConfig(cmd, "mute", &cfg.Mute, q.Mute)

	lb := fileCfg.Leaderboard
	applyStringConfig(cmd, "backend", &cfg.Backend, lb.Backend)
	applyStringConfig(cmd, "redis-addr", &cfg.RedisAddr, lb.RedisAddr)
	applyStringConfig(cmd, "redis-password", &cfg.RedisPassword, lb.RedisPassword)
	applyIntConfig(cmd, "redis-db", &cfg.RedisDB, lb.RedisDB)
	applyStringConfig(cmd, "nickname", &cfg.Nickname, lb.Nickname)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if flagChanged(cmd, name) {
		return
	}
	*target = *value
}

// flagChanged also reports false for flags the command does not define.
func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func validateConfig(cfg appConfig) error {
	if cfg.MaxAttempts <= 0 {
		return fmt.Errorf("--max-attempts must be > 0")
	}
	if cfg.MasteryThreshold <= 0 {
		return fmt.Errorf("--mastery-threshold must be > 0")
	}
	if cfg.WordsPerRound < 0 {
		return fmt.Errorf("--words must be >= 0")
	}
	if cfg.Rate <= 0 || cfg.SlowRate <= 0 {
		return fmt.Errorf("--rate and --slow-rate must be > 0")
	}
	if !config.ValidBackend(cfg.Backend) {
		return fmt.Errorf("--backend must be one of %s, %s, %s", config.BackendSQLite, config.BackendRedis, config.BackendOff)
	}
	if cfg.Backend == config.BackendRedis && cfg.RedisAddr == "" {
		return fmt.Errorf("--redis-addr must not be empty for the redis backend")
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("--redis-db must be >= 0")
	}
	if cfg.Nickname != "" {
		if _, err := leaderboard.NormalizeNickname(cfg.Nickname); err != nil {
			return fmt.Errorf("--nickname: %w", err)
		}
	}
	return nil
}

// resolveSet loads the catalog and picks the configured set. A missing
// catalog at the default path falls back to the built-in sets.
func resolveSet(cfg appConfig) (wordset.Set, wordset.Catalog, error) {
	cat, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return wordset.Set{}, wordset.Catalog{}, err
	}
	if cfg.Set == "" {
		set, ok := cat.Latest()
		if !ok {
			return wordset.Set{}, wordset.Catalog{}, fmt.Errorf("catalog has no sets")
		}
		return set, cat, nil
	}
	set, err := cat.Find(cfg.Set)
	if err != nil {
		if errors.Is(err, wordset.ErrUnknownSet) {
			return wordset.Set{}, wordset.Catalog{}, fmt.Errorf("%w (run: spellbee sets)", err)
		}
		return wordset.Set{}, wordset.Catalog{}, err
	}
	return set, cat, nil
}

func loadCatalog(path string) (wordset.Catalog, error) {
	if path == "" || path == config.DefaultCatalogPath() {
		if _, err := os.Stat(config.DefaultCatalogPath()); os.IsNotExist(err) {
			return wordset.Default(), nil
		}
		path = config.DefaultCatalogPath()
	}
	cat, err := wordset.LoadFile(path)
	if err != nil {
		return wordset.Catalog{}, fmt.Errorf("failed to load word sets from %s: %w", path, err)
	}
	return cat, nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# spellbee configuration
# Uncomment a value to enable it. CLI flags override config values.

[quiz]
# set = "starter"            # Word set id, or "tournament" (default: latest)
# catalog = "words.yaml"     # Catalog (.yaml) or plain word list path
# max-attempts = %d           # Guesses per word before it is revealed
# mastery-threshold = %d      # First-try streak that clears a mistake
# words-per-round = 0        # Words per round, mistakes first (0: whole set)
# engine = "espeak-ng"       # Speech command
# voice = "en-us"            # Speech voice
# rate = %d                 # Speech rate (words per minute)
# slow-rate = %d             # Slow replay rate (words per minute)
# mute = false               # Do not speak words

[leaderboard]
# backend = %q           # sqlite, redis or off
# redis-addr = %q  # Shared leaderboard address
# redis-password = ""
# redis-db = 0
# nickname = ""              # Up to %d characters
`,
		quiz.DefaultMaxAttempts,
		ledger.DefaultMasteryThreshold,
		speech.DefaultRate,
		speech.DefaultSlowRate,
		defaultBackend,
		defaultRedisAddr,
		leaderboard.MaxNicknameLen,
	)
}
