// Luna - a glitchy AI witch companion lurking in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/normanking/luna/internal/agent"
	"github.com/normanking/luna/internal/brain"
	"github.com/normanking/luna/internal/config"
	"github.com/normanking/luna/internal/learning"
	"github.com/normanking/luna/internal/logging"
	"github.com/normanking/luna/internal/notify"
	"github.com/normanking/luna/internal/personality"
	"github.com/normanking/luna/internal/reflection"
	"github.com/normanking/luna/internal/scheduler"
	"github.com/normanking/luna/internal/store"
	"github.com/normanking/luna/internal/watcher"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Luna v%s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	bootLog := logging.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Warn().Err(err).Msg("config load failed, using defaults")
		cfg = config.Default()
	}

	logger := logging.NewWithConfig(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.File)
	defer logger.Close()
	logger.Info().Str("version", version).Msg("Luna is lurking in the background")

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("Luna crashed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info().Msg("shutting down")
		cancel()
	}()

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	brn := brain.NewOllamaBrain(cfg.Generation)
	if err := brn.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("generation engine unreachable, continuing anyway")
	}

	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier = notify.NewCommandNotifier(cfg.Notify.Command)
	}

	summarizer := watcher.NewSummarizer(st)
	builder := personality.NewBuilder(st, brn, summarizer, logger, cfg.Generation.PromptTimeout())
	engine := reflection.NewEngine(st, brn, logger, cfg.Generation.ReflectTimeout())
	learner := learning.New(st, brn, logger, cfg.Generation.ResponseTimeout())
	luna := agent.New(st, brn, builder, engine, learner, summarizer, logger, cfg.Generation)

	sched, err := scheduler.New(luna, learner, st, summarizer, watcher.NewDesktopSnapshotter(), notifier, logger, cfg.Schedule)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}

	sched.Start(ctx)
	defer sched.Stop()

	<-ctx.Done()
	return nil
}
