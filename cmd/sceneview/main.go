// Package main is the entry point for the scene viewer.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/nevk-scene/internal/config"
	"github.com/Faultbox/nevk-scene/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== nevk-scene viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	path, err := scenePath(cfg)
	if err != nil {
		if err == dialog.ErrCancelled {
			logger.Info("no scene selected")
			return
		}
		logger.Error("choosing scene", zap.Error(err))
		os.Exit(1)
	}

	v, err := newViewer(cfg, path)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// scenePath returns the scene given on the command line, then the one in
// the config, and otherwise asks with a native file dialog.
func scenePath(cfg *config.Config) (string, error) {
	if args := config.Args(); len(args) > 0 {
		return args[0], nil
	}
	if cfg.Scene.Path != "" {
		return cfg.Scene.Path, nil
	}
	return dialog.File().
		Filter("Scene descriptions", "yaml", "yml").
		Filter("All Files", "*").
		Title("Open Scene").
		Load()
}
