// Package main provides the CLI entrypoint for spellbee.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/spellbee/internal/config"
	"github.com/verte-zerg/spellbee/internal/leaderboard"
	"github.com/verte-zerg/spellbee/internal/ledger"
	"github.com/verte-zerg/spellbee/internal/logging"
	"github.com/verte-zerg/spellbee/internal/quiz"
	"github.com/verte-zerg/spellbee/internal/report"
	"github.com/verte-zerg/spellbee/internal/speech"
	"github.com/verte-zerg/spellbee/internal/store"
	"github.com/verte-zerg/spellbee/internal/tui"
)

const (
	defaultBackend   = config.BackendSQLite
	defaultRedisAddr = "localhost:6379"
)

var (
	settings       appConfig
	verbose        bool
	leaderboardAll bool
)

// appConfig holds the effective settings after flags and the config file
// are merged.
type appConfig struct {
	Set              string
	Catalog          string
	MaxAttempts      int
	MasteryThreshold int
	WordsPerRound    int
	Engine           string
	Voice            string
	Rate             int
	SlowRate         int
	Mute             bool
	Backend          string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	Nickname         string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "spellbee",
		Short:         "TUI spelling quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settings.Catalog, "catalog", config.DefaultCatalogPath(), "word-set catalog (.yaml) or plain word list")
	pf.StringVar(&settings.Set, "set", "", "word set id, or 'tournament' for every set (default: latest)")
	pf.IntVar(&settings.MasteryThreshold, "mastery-threshold", ledger.DefaultMasteryThreshold, "first-try streak that clears a mistake")
	pf.StringVar(&settings.Backend, "backend", defaultBackend, "leaderboard backend: sqlite, redis or off")
	pf.StringVar(&settings.RedisAddr, "redis-addr", defaultRedisAddr, "redis address for the shared leaderboard")
	pf.StringVar(&settings.RedisPassword, "redis-password", "", "redis password")
	pf.IntVar(&settings.RedisDB, "redis-db", 0, "redis database number")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	f := rootCmd.Flags()
	f.IntVar(&settings.MaxAttempts, "max-attempts", quiz.DefaultMaxAttempts, "guesses per word before it is revealed")
	f.IntVar(&settings.WordsPerRound, "words", 0, "words per round, mistakes first (0: whole set)")
	f.StringVar(&settings.Engine, "engine", "", "speech command (default: say, espeak-ng or espeak)")
	f.StringVar(&settings.Voice, "voice", "", "speech voice name")
	f.IntVar(&settings.Rate, "rate", speech.DefaultRate, "speech rate in words per minute")
	f.IntVar(&settings.SlowRate, "slow-rate", speech.DefaultSlowRate, "slow replay rate in words per minute")
	f.BoolVar(&settings.Mute, "mute", false, "do not speak words")
	f.StringVar(&settings.Nickname, "nickname", "", "leaderboard nickname")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSetsCmd())
	rootCmd.AddCommand(newMistakesCmd())
	rootCmd.AddCommand(newLeaderboardCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	set, _, err := resolveSet(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(config.DefaultLogPath(), verbose)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush.
		_ = logger.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	board, closeBoard, err := openBoard(cmd.Context(), cfg, st)
	if err != nil {
		logErrf("leaderboard disabled: %v\n", err)
		logger.Warn("leaderboard disabled", zap.Error(err))
	}
	defer closeBoard()

	speaker := newSpeaker(cfg, logger)
	if c, ok := speaker.(*speech.Command); ok {
		defer c.Close()
	}

	reporter := leaderboard.NewReporter(board, logger)
	defer reporter.Wait()

	session := quiz.New(set, quiz.Config{
		MaxAttempts:   cfg.MaxAttempts,
		WordsPerRound: cfg.WordsPerRound,
	}, quiz.Deps{
		Ledger:  ledger.New(st, set.ID, cfg.MasteryThreshold, logger),
		Speaker: speaker,
		Logger:  logger,
	})

	model := tui.NewModel(tui.Options{
		Session:  session,
		Reporter: reporter,
		Board:    board,
		Prefs:    st,
		Nickname: cfg.Nickname,
		Logger:   logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newSpeaker(cfg appConfig, logger *zap.Logger) quiz.Speaker {
	if cfg.Mute {
		return speech.Nop{}
	}
	c, err := speech.NewCommand(speech.Options{
		Engine:   cfg.Engine,
		Voice:    cfg.Voice,
		Rate:     cfg.Rate,
		SlowRate: cfg.SlowRate,
	}, logger)
	if err != nil {
		logErrf("speech disabled: %v\n", err)
		return speech.Nop{}
	}
	return c
}

// openBoard builds the configured leaderboard. The returned close func is
// never nil. A nil board with a nil error means the leaderboard is off.
func openBoard(ctx context.Context, cfg appConfig, st *store.Store) (leaderboard.Board, func(), error) {
	noop := func() {}
	switch cfg.Backend {
	case config.BackendOff:
		return nil, noop, nil
	case config.BackendRedis:
		if ctx == nil {
			ctx = context.Background()
		}
		rb := leaderboard.NewRedisBoard(leaderboard.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		closeFn := func() {
			if cerr := rb.Close(); cerr != nil {
				// Best-effort close.
				_ = cerr
			}
		}
		pingCtx, cancel := context.WithTimeout(ctx, leaderboard.DefaultSubmitTimeout)
		defer cancel()
		if err := rb.Ping(pingCtx); err != nil {
			closeFn()
			return nil, noop, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		return rb, closeFn, nil
	default:
		return leaderboard.NewSQLiteBoard(st), noop, nil
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newSetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List word sets",
		Args:  cobra.NoArgs,
		RunE:  runSetsCmd,
	}
}

func runSetsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	set, cat, err := resolveSet(cfg)
	if err != nil {
		return err
	}
	if err := report.RenderSets(cmd.OutOrStdout(), cat.Sets, set.ID, report.Options{}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newMistakesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mistakes",
		Short: "Show tracked mistakes of a word set",
		Args:  cobra.NoArgs,
		RunE:  runMistakesCmd,
	}
}

func runMistakesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	set, _, err := resolveSet(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	l := ledger.New(st, set.ID, cfg.MasteryThreshold, nil)
	if err := report.RenderMistakes(cmd.OutOrStdout(), set, l.Entries(), l.Threshold(), report.Options{}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scores of a word set",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	cmd.Flags().BoolVar(&leaderboardAll, "all", false, "show every set with scores")
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if cfg.Backend == config.BackendOff {
		return errors.New("leaderboard is off (set --backend or [leaderboard] backend)")
	}
	set, cat, err := resolveSet(cfg)
	if err != nil {
		return err
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	board, closeBoard, err := openBoard(ctx, cfg, st)
	if err != nil {
		return err
	}
	defer closeBoard()

	ids := []string{set.ID}
	if leaderboardAll {
		if ids, err = boardSets(ctx, board); err != nil {
			return fmt.Errorf("failed to list sets: %w", err)
		}
	}
	boards, err := leaderboard.FetchAll(ctx, board, ids, leaderboard.DefaultTop)
	if err != nil {
		return fmt.Errorf("failed to load leaderboard: %w", err)
	}

	player := cfg.Nickname
	if player == "" {
		player = leaderboard.LoadNickname(st)
	}
	out := cmd.OutOrStdout()
	for i, id := range ids {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		title := id
		if s, err := cat.Find(id); err == nil && s.Title != "" {
			title = s.Title
		}
		if err := report.RenderLeaderboard(out, title, boards[id], player, report.Options{}); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

type setLister interface {
	Sets(ctx context.Context) ([]string, error)
}

func boardSets(ctx context.Context, board leaderboard.Board) ([]string, error) {
	l, ok := board.(setLister)
	if !ok {
		return nil, errors.New("backend cannot list sets")
	}
	return l.Sets(ctx)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
