package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kartoza/heart-risk/internal/config"
	"github.com/kartoza/heart-risk/internal/logging"
	"github.com/kartoza/heart-risk/internal/model"
	"github.com/kartoza/heart-risk/internal/predict"
	"github.com/kartoza/heart-risk/internal/server"
	"github.com/kartoza/heart-risk/internal/window"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	flagConfig   = "config"
	flagAddr     = "addr"
	flagPort     = "port"
	flagModel    = "model"
	flagCache    = "cache-size"
	flagLogLevel = "log-level"
	flagLogFile  = "log-file"
	flagWindow   = "window"

	windowTitle = "Heart Disease Risk"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file",
			Sources: cli.EnvVars("HEART_RISK_CONFIG"),
		},
		&cli.StringFlag{
			Name:  flagAddr,
			Usage: "Interface to bind",
			Value: config.DefaultAddr,
		},
		&cli.IntFlag{
			Name:    flagPort,
			Aliases: []string{"p"},
			Usage:   "HTTP server port",
			Value:   config.DefaultPort,
			Sources: cli.EnvVars("HEART_RISK_PORT"),
		},
		&cli.StringFlag{
			Name:    flagModel,
			Aliases: []string{"m"},
			Usage:   "Path to the model artifact (.json, .yaml)",
			Value:   config.DefaultModelPath,
			Sources: cli.EnvVars("HEART_RISK_MODEL"),
		},
		&cli.IntFlag{
			Name:  flagCache,
			Usage: "Number of cached predictions, 0 disables the cache",
			Value: config.DefaultCacheSize,
		},
		&cli.StringFlag{
			Name:  flagLogLevel,
			Usage: "Log level [debug, info, warn, error]",
			Value: config.DefaultLogLevel,
		},
		&cli.StringFlag{
			Name:  flagLogFile,
			Usage: "Write logs to a rotating file instead of stderr",
		},
		&cli.BoolFlag{
			Name:  flagWindow,
			Usage: "Open the form in a native window (requires -tags webview)",
		},
	}
}

// resolveConfig layers flags over the config file over defaults
func resolveConfig(c *cli.Command) (config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return cfg, err
	}

	if c.IsSet(flagAddr) {
		cfg.Addr = c.String(flagAddr)
	}
	if c.IsSet(flagPort) {
		cfg.Port = int(c.Int(flagPort))
	}
	if c.IsSet(flagModel) {
		cfg.ModelPath = c.String(flagModel)
	}
	if c.IsSet(flagCache) {
		cfg.CacheSize = int(c.Int(flagCache))
	}
	if c.IsSet(flagLogLevel) {
		cfg.Log.Level = c.String(flagLogLevel)
	}
	if c.IsSet(flagLogFile) {
		cfg.Log.File = c.String(flagLogFile)
	}
	if c.IsSet(flagWindow) {
		cfg.Window = c.Bool(flagWindow)
	}
	cfg.Version = version

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, c *cli.Command) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	logger.Info("starting",
		zap.String("version", cfg.Version),
		zap.String("address", cfg.ListenAddr()),
		zap.String("model", cfg.ModelPath),
	)

	svc, err := predict.NewService(loadClassifier(cfg.ModelPath, logger), cfg.CacheSize, logger)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		return srv.Stop()
	})

	if cfg.Window {
		if err := window.Open(gctx, windowTitle, server.URL(ln)); err != nil {
			logger.Warn("could not open window, running headless", zap.Error(err))
		} else {
			logger.Info("window closed, shutting down server")
			stop()
		}
	}

	return g.Wait()
}

// loadClassifier returns nil when the artifact cannot be loaded so the
// server still starts and answers "Model not loaded"
func loadClassifier(path string, logger *zap.Logger) model.Classifier {
	m, err := model.Load(path)
	if err != nil {
		logger.Error("failed to load model, predictions disabled",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}

	logger.Info("model loaded",
		zap.String("path", path),
		zap.String("kind", m.Kind()),
	)
	return m
}
