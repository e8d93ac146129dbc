package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typesprint/internal/config"
	"github.com/verte-zerg/typesprint/internal/logging"
	"github.com/verte-zerg/typesprint/internal/scoring"
	"github.com/verte-zerg/typesprint/internal/stats"
	"github.com/verte-zerg/typesprint/internal/store"
)

var (
	serveConfigPath string
	serveAddr       string

	bestsScoreURL string
	bestsDBPath   string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scoring service",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveConfigPath, "config", "", "YAML config file (default: $TYPESPRINT_SERVER_CONFIG)")
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides config")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadServer(cmd.Context(), serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, term.IsTerminal(int(os.Stderr.Fd())))
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "error", cerr)
		}
	}()

	metrics := scoring.NewMetrics()
	metrics.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	srv := scoring.NewServer(st,
		scoring.WithLogger(logger),
		scoring.WithMetrics(metrics),
		scoring.WithTimeouts(millis(cfg.ReadTimeoutMS), millis(cfg.WriteTimeoutMS)),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down scoring service")
	if err := srv.Shutdown(millis(cfg.ShutdownTimeoutMS)); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func newBestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bests",
		Short: "Show best WPM per mode",
		Args:  cobra.NoArgs,
		RunE:  runBestsCmd,
	}
	cmd.Flags().StringVar(&bestsScoreURL, "score-url", defaultScoreURL, "scoring service base URL")
	cmd.Flags().StringVar(&bestsDBPath, "db", "", "read a local scores database instead of the service")
	return cmd
}

func runBestsCmd(cmd *cobra.Command, _ []string) error {
	src, closeSrc, err := bestsSource(cmd)
	if err != nil {
		return err
	}
	defer closeSrc()

	report, err := stats.BuildReport(cmd.Context(), src)
	if err != nil {
		return err
	}
	return stats.RenderBests(cmd.OutOrStdout(), report.Bests)
}

func bestsSource(cmd *cobra.Command) (stats.BestsSource, func(), error) {
	if bestsDBPath != "" {
		if _, err := os.Stat(bestsDBPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil, fmt.Errorf("scores database not found: %s", bestsDBPath)
			}
			return nil, nil, fmt.Errorf("failed to stat scores database: %w", err)
		}
		st, err := store.Open(bestsDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		return st, func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}, nil
	}

	if !cmd.Flags().Changed("score-url") {
		fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		applyStringConfig(cmd, "score-url", &bestsScoreURL, fileCfg.Practice.ScoreURL)
	}
	return scoring.NewClient(bestsScoreURL), func() {}, nil
}
