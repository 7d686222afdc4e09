package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/webriots/seq"
	"github.com/webriots/seq/internal/config"
	"github.com/webriots/seq/internal/observability"
)

// run is the main entry point after CLI parsing.
func run(opts Options) int {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	zap.L().Info("seqrun started", zap.Int("steps", len(cfg.Script)))
	zap.L().Debug("effective configuration", zap.Any("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	loop := seq.NewLoop(seq.WithLoopLogger(logger))
	defer loop.Close()

	result, err := runScript(ctx, seq.NewScheduler(loop, schedulerOptions(cfg, logger)...), cfg.Script, logger)
	if err != nil {
		zap.L().Error("script failed", zap.Error(err))
		return 1
	}
	fmt.Fprintln(os.Stdout, formatResult(result))
	return 0
}

// runScript starts the script on s and waits for it. When ctx ends
// first, the run is stopped and the context's error is returned.
func runScript(ctx context.Context, s *seq.Scheduler, script []config.StepConfig, log *zap.Logger) (any, error) {
	var r *seq.Run
	if err := s.Loop().Do(func() {
		r = s.Start(Script(script, log))
	}); err != nil {
		return nil, err
	}

	v, err := r.Wait(ctx)
	if ctx.Err() == nil {
		return v, err
	}
	_ = s.Loop().Do(r.Stop)
	<-r.Done()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("script timed out: %w", ctx.Err())
	}
	return nil, ctx.Err()
}

func schedulerOptions(cfg *config.Config, log *zap.Logger) []seq.Option {
	opts := []seq.Option{seq.WithLogger(log)}
	if cfg.FrameInterval > 0 {
		handlers := append(seq.DefaultHandlers(), seq.FrameHandler(cfg.FrameInterval))
		opts = append(opts, seq.WithHandlers(handlers...))
	}
	return opts
}
