package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danhigham/telecache/internal/config"
	"github.com/danhigham/telecache/internal/media"
	"github.com/danhigham/telecache/internal/reconcile"
	"github.com/danhigham/telecache/internal/remote"
	"github.com/danhigham/telecache/internal/store"
	"github.com/danhigham/telecache/internal/telegram"
)

// app holds what every subcommand opens: config, logger, store and media box.
type app struct {
	cfgPath string

	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
	media  *media.Box
}

// newRootCmd builds the command tree. The caller closes a after Execute.
func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "telecache",
		Short:        "Keep cached Telegram peer metadata in sync",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	cmd.PersistentFlags().StringVar(&a.cfgPath, "config", filepath.Join(config.Dir(), "config.yaml"), "Config file path.")

	cmd.AddCommand(newSyncCmd(a))
	cmd.AddCommand(newHistoryCmd(a))
	cmd.AddCommand(newRefreshCmd(a))
	cmd.AddCommand(newSettingsCmd(a))
	cmd.AddCommand(newShowCmd(a))
	return cmd
}

func (a *app) open() error {
	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("%w\n\nCreate %s with:\n\ntelegram:\n  api_id: YOUR_API_ID\n  api_hash: \"YOUR_API_HASH\"\n\nGet API credentials from https://my.telegram.org", err, a.cfgPath)
	}
	a.cfg = cfg

	cfgDir := filepath.Dir(a.cfgPath)
	if err := os.MkdirAll(cfgDir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	// Log to a file so prompts and output stay clean.
	logPath := filepath.Join(cfgDir, "telecache.log")
	logCfg := zap.NewDevelopmentConfig()
	logCfg.OutputPaths = []string{logPath}
	logCfg.ErrorOutputPaths = []string{logPath}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	logCfg.Level = level
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.logger = logger

	backend, err := store.OpenPebble(cfg.Store.Path, store.PebbleOptions{CacheSize: cfg.Store.CacheSize})
	if err != nil {
		return err
	}
	a.store = store.New(backend, logger)

	box, err := media.NewBox(cfg.Media.Dir, logger)
	if err != nil {
		return err
	}
	a.media = box
	return nil
}

func (a *app) close() {
	if a.media != nil {
		_ = a.media.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// connect runs fn with an authorized client and a reconciler bound to it.
func (a *app) connect(ctx context.Context, fn func(ctx context.Context, client *telegram.Client, r *reconcile.Reconciler) error) error {
	sessionDir := filepath.Dir(a.cfgPath)
	client := telegram.New(telegram.Options{
		APIID:               a.cfg.Telegram.APIID,
		APIHash:             a.cfg.Telegram.APIHash,
		SessionDir:          sessionDir,
		FloodWaitMaxRetries: a.cfg.FloodWait.MaxRetries,
		FloodWaitMaxWait:    a.cfg.FloodWait.MaxWait,
		Media:               a.media,
		MaxDocumentSize:     a.cfg.Media.MaxDocumentSize,
		Auth:                telegram.NewPromptAuth(a.cfg.Telegram.Phone, os.Stdin, os.Stderr),
	}, a.store, a.logger)

	return client.Run(ctx, func(ctx context.Context) error {
		policy := remote.RetryPolicy{
			InitialInterval: a.cfg.Retry.InitialInterval,
			MaxInterval:     a.cfg.Retry.MaxInterval,
		}
		gateway := remote.NewRetrying(client.Gateway(), telegram.IsTransient, policy, a.logger.Named("gateway"))
		r := reconcile.New(client.Account(), gateway, a.store, a.media, a.logger)
		return fn(ctx, client, r)
	})
}
