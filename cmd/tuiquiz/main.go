// Package main provides the CLI entrypoint for tuiquiz.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tuiquiz/internal/catalog"
	"github.com/verte-zerg/tuiquiz/internal/config"
	"github.com/verte-zerg/tuiquiz/internal/model"
	"github.com/verte-zerg/tuiquiz/internal/question"
	"github.com/verte-zerg/tuiquiz/internal/quiz"
	"github.com/verte-zerg/tuiquiz/internal/stats"
	"github.com/verte-zerg/tuiquiz/internal/statsui"
	"github.com/verte-zerg/tuiquiz/internal/store"
	"github.com/verte-zerg/tuiquiz/internal/tui"
)

const (
	defaultLockDelay   = time.Second
	defaultTimeout     = 30 * time.Second
	defaultImageRPS    = 4.0
	defaultCurveWindow = 5
	defaultTermWidth   = 80
)

var (
	sourceAPIKey   string
	sourceEndpoint string
	sourceCatalog  string
	sourceTimeout  time.Duration
	dbPath         string

	playLockDelay time.Duration
	playImageRPS  float64
	playLogPath   string
	playOffline   bool
	playNoSave    bool

	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsReset       bool
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuiquiz",
		Short:         "TUI movie rating quiz",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&sourceAPIKey, "api-key", "", "movie API key")
	pf.StringVar(&sourceEndpoint, "endpoint", catalog.DefaultEndpoint, "most popular movies endpoint")
	pf.StringVar(&sourceCatalog, "catalog", config.DefaultCatalogPath(), "catalog cache file")
	pf.DurationVar(&sourceTimeout, "timeout", defaultTimeout, "HTTP request timeout")
	pf.StringVar(&dbPath, "db", config.DefaultDBPath(), "statistics database path")

	rootCmd.Flags().DurationVar(&playLockDelay, "lock-delay", defaultLockDelay, "how long answer feedback stays on screen")
	rootCmd.Flags().Float64Var(&playImageRPS, "image-rps", defaultImageRPS, "poster downloads per second (0 = unlimited)")
	rootCmd.Flags().StringVar(&playLogPath, "log", "", "append diagnostics to this file")
	rootCmd.Flags().BoolVar(&playOffline, "offline", false, "use the cached catalog only")
	rootCmd.Flags().BoolVar(&playNoSave, "no-save", false, "keep statistics in memory for this run only")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newCatalogCmd())

	return rootCmd
}

// loadSettings merges config file and environment into the flag variables.
// Flags set on the command line always win.
func loadSettings(cmd *cobra.Command) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	applySettings(cmd, fileCfg, envCfg)
	return nil
}

func applySettings(cmd *cobra.Command, fileCfg config.FileConfig, envCfg config.EnvConfig) {
	applyStringConfig(cmd, "api-key", &sourceAPIKey, fileCfg.Source.APIKey)
	applyStringConfig(cmd, "endpoint", &sourceEndpoint, fileCfg.Source.Endpoint)
	applyStringConfig(cmd, "catalog", &sourceCatalog, fileCfg.Source.Catalog)
	applyDurationConfig(cmd, "timeout", &sourceTimeout, fileCfg.Source.TimeoutSec, time.Second)
	applyDurationConfig(cmd, "lock-delay", &playLockDelay, fileCfg.Quiz.LockDelayMS, time.Millisecond)
	applyFloatConfig(cmd, "image-rps", &playImageRPS, fileCfg.Source.ImageRPS)

	applyEnvConfig(cmd, "api-key", &sourceAPIKey, envCfg.APIKey)
	applyEnvConfig(cmd, "endpoint", &sourceEndpoint, envCfg.Endpoint)
	applyEnvConfig(cmd, "catalog", &sourceCatalog, envCfg.Catalog)
	applyEnvConfig(cmd, "db", &dbPath, envCfg.DBPath)
}

func playConfig() model.Config {
	return model.Config{
		APIKey:      sourceAPIKey,
		Endpoint:    sourceEndpoint,
		CatalogPath: sourceCatalog,
		DBPath:      dbPath,
		LogPath:     playLogPath,
		LockDelay:   playLockDelay,
		Timeout:     sourceTimeout,
		ImageRPS:    playImageRPS,
	}
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	cfg := playConfig()
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if cfg.APIKey == "" && !playOffline {
		logErrln("no API key configured; using the cached catalog (set TUIQUIZ_API_KEY or run: tuiquiz config)")
	}

	logger, closeLog, err := openLogger(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	svc, closeStats, err := openStatistics(cfg.DBPath, playNoSave, logger)
	if err != nil {
		return err
	}
	defer closeStats()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := catalog.NewClient(cfg.Endpoint, cfg.APIKey, cfg.Timeout, cfg.ImageRPS)
	cached := catalog.FileLoader{Path: cfg.CatalogPath}
	var loader catalog.Loader = cached
	if !playOffline && cfg.APIKey != "" {
		remote := catalog.WriteThrough(client, cfg.CatalogPath, func(err error) {
			logger.Printf("failed to cache catalog: %v", err)
		})
		loader = catalog.FirstOf(remote, cached)
	}

	factory := question.New(ctx, loader, client, logger)
	loop := quiz.NewLoop(16)
	defer loop.Close()

	ui := tui.NewModel(factory, svc, loop, cfg.LockDelay, logger)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func openStatistics(path string, inMemory bool, logger *log.Logger) (*stats.Service, func(), error) {
	if inMemory {
		mem := store.NewMemory()
		return stats.NewService(mem, stats.WithHistory(mem), stats.WithLogger(logger)), func() {}, nil
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return stats.NewService(st, stats.WithHistory(st), stats.WithLogger(logger)), closeFn, nil
}

func openLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}
	closeFn := func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}
	return log.New(f, "tuiquiz ", log.LstdFlags|log.Lmicroseconds), closeFn, nil
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

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N rounds")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsReset, "reset", false, "delete all statistics")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the interactive view")
	return cmd
}

func parseStatsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	return model.StatsConfig{
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	cfg, err := parseStatsConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsReset {
		if err := st.Reset(context.Background()); err != nil {
			return fmt.Errorf("failed to reset stats: %w", err)
		}
		logErrln("Statistics cleared.")
		return nil
	}

	svc := stats.NewService(st)
	load := func(ctx context.Context, cfg model.StatsConfig) (stats.Report, error) {
		return stats.BuildReport(ctx, svc, st, cfg)
	}

	out := cmd.OutOrStdout()
	if statsPlain || !isTerminal(out) {
		report, err := load(context.Background(), cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		if err := report.Render(out, terminalWidth(out)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	program := tea.NewProgram(statsui.NewModel(load, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultTermWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultTermWidth
	}
	return width
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Download the movie catalog into the local cache",
		Args:  cobra.NoArgs,
		RunE:  runCatalogCmd,
	}
}

func runCatalogCmd(cmd *cobra.Command, _ []string) error {
	if err := loadSettings(cmd); err != nil {
		return err
	}
	if sourceAPIKey == "" {
		return fmt.Errorf("--api-key must not be empty (or set TUIQUIZ_API_KEY)")
	}
	if sourceTimeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	client := catalog.NewClient(sourceEndpoint, sourceAPIKey, sourceTimeout, 0)
	logErrln("Fetching catalog...")
	movies, err := client.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to download catalog: %w", err)
	}
	usable := catalog.Filter(movies)
	if len(usable) == 0 {
		return model.ErrEmptyCatalog
	}
	if err := catalog.WriteFile(sourceCatalog, usable); err != nil {
		return err
	}
	logErrf("Wrote %d movies to %s\n", len(usable), sourceCatalog)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *int, unit time.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = time.Duration(*value) * unit
}

func applyEnvConfig(cmd *cobra.Command, name string, target *string, value string) {
	if value == "" {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuiquiz configuration
# Uncomment a value to enable it. Environment variables override config values,
# CLI flags override both.

[quiz]
# lock-delay-ms = %d      # How long answer feedback stays on screen

[source]
# api-key = ""            # Movie API key (env TUIQUIZ_API_KEY)
# endpoint = %q
# catalog = %q
# timeout-sec = %d        # HTTP request timeout
# image-rps = %.1f        # Poster downloads per second (0 = unlimited)
`,
		defaultLockDelay.Milliseconds(),
		catalog.DefaultEndpoint,
		config.DefaultCatalogPath(),
		int(defaultTimeout.Seconds()),
		defaultImageRPS,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.LockDelay < 0 {
		return fmt.Errorf("--lock-delay must be >= 0")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0")
	}
	if cfg.ImageRPS < 0 {
		return fmt.Errorf("--image-rps must be >= 0")
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return fmt.Errorf("--endpoint must not be empty")
	}
	if strings.TrimSpace(cfg.CatalogPath) == "" {
		return fmt.Errorf("--catalog must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return fmt.Errorf("--db must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
