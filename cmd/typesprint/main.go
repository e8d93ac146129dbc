// Package main provides the CLI entrypoint for typesprint.
package main

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typesprint/internal/config"
	"github.com/verte-zerg/typesprint/internal/logging"
	"github.com/verte-zerg/typesprint/internal/model"
	"github.com/verte-zerg/typesprint/internal/sampler"
	"github.com/verte-zerg/typesprint/internal/scoring"
	"github.com/verte-zerg/typesprint/internal/session"
	"github.com/verte-zerg/typesprint/internal/tui"
	"github.com/verte-zerg/typesprint/internal/wordlist"
)

const (
	defaultScoreURL = "http://localhost:8077"
	defaultLogLevel = "info"
)

var (
	practiceMode         string
	practiceWords        int
	practiceDict         string
	practiceScoreURL     string
	practiceScoreTimeout time.Duration
	practiceOffline      bool
	practiceLogLevel     string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typesprint",
		Short:         "Timed typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceMode, "mode", model.DefaultMode.String(), "test length: 15, 30, 60, 120 or endless")
	rootCmd.Flags().IntVar(&practiceWords, "words", sampler.DefaultWords, "words sampled per test")
	rootCmd.Flags().StringVar(&practiceDict, "dict", "", "word list file, one word per line (default: built-in)")
	rootCmd.Flags().StringVar(&practiceScoreURL, "score-url", defaultScoreURL, "scoring service base URL")
	rootCmd.Flags().DurationVar(&practiceScoreTimeout, "score-timeout", scoring.DefaultTimeout, "score submission timeout")
	rootCmd.Flags().BoolVar(&practiceOffline, "offline", false, "do not submit scores")
	rootCmd.Flags().StringVar(&practiceLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newBestsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := practiceConfig(cmd, fileCfg.Practice)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("typesprint needs an interactive terminal")
	}

	words, err := wordlist.Load(cfg.DictPath)
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}

	logPath := config.DefaultLogPath()
	logger, closeLog, err := logging.OpenFile(logPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()
	logger.Info("practice started", "mode", cfg.Mode.String(), "words", cfg.Words, "dictionary", len(words), "offline", cfg.Offline)

	var scorer session.Scorer
	if !cfg.Offline {
		scorer = scoring.NewClient(cfg.ScoreURL, scoring.WithTimeout(cfg.ScoreTimeout))
	}

	ui := tui.NewModel(cfg, words, scorer, logger)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// practiceConfig merges file values under flags the user did not set.
func practiceConfig(cmd *cobra.Command, file config.PracticeConfig) (model.Config, error) {
	applyStringConfig(cmd, "mode", &practiceMode, file.Mode)
	applyIntConfig(cmd, "words", &practiceWords, file.Words)
	applyStringConfig(cmd, "dict", &practiceDict, file.Dict)
	applyStringConfig(cmd, "score-url", &practiceScoreURL, file.ScoreURL)
	applyBoolConfig(cmd, "offline", &practiceOffline, file.Offline)
	applyStringConfig(cmd, "log-level", &practiceLogLevel, file.LogLevel)
	if err := applyDurationConfig(cmd, "score-timeout", &practiceScoreTimeout, file.ScoreTimeout); err != nil {
		return model.Config{}, err
	}

	mode, err := model.ParseMode(practiceMode)
	if err != nil {
		return model.Config{}, fmt.Errorf("--mode: %w", err)
	}
	return model.Config{
		DictPath:     practiceDict,
		Words:        practiceWords,
		Mode:         mode,
		ScoreURL:     practiceScoreURL,
		ScoreTimeout: practiceScoreTimeout,
		Offline:      practiceOffline,
		LogLevel:     practiceLogLevel,
	}, nil
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
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil || cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typesprint configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# mode = %q            # 15, 30, 60, 120 or endless
# words = %d              # Words sampled per test
# dict = ""               # Word list file, one word per line (empty: built-in)
# score-url = %q
# score-timeout = %q
# offline = false         # Keep results local
# log-level = %q
`,
		model.DefaultMode.String(),
		sampler.DefaultWords,
		defaultScoreURL,
		scoring.DefaultTimeout.String(),
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if !cfg.Mode.Known() {
		return fmt.Errorf("--mode must be one of 15, 30, 60, 120, endless")
	}
	if cfg.ScoreTimeout <= 0 {
		return fmt.Errorf("--score-timeout must be > 0")
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	if cfg.Offline {
		return nil
	}
	u, err := url.Parse(cfg.ScoreURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("--score-url must be an http(s) URL")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
