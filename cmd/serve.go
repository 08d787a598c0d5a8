package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/accounts"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/bus"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/config"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/service"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/store"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/telemetry"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/webhook"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook gateway",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	// Setup structured logging
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	states, err := openChatStateStore(cfg)
	if err != nil {
		slog.Error("failed to open chat state store", "error", err)
		os.Exit(1)
	}
	defer states.Close()

	runtime := config.NewRuntimeAdapter(cfg)
	enabled := accounts.ListEnabledAccounts(runtime)
	if len(enabled) == 0 {
		slog.Warn("no configured whatsapp accounts; webhook verification will reject all requests")
	}
	for _, acct := range enabled {
		slog.Info("whatsapp account ready",
			"account", acct.AccountID,
			"phone_number_id", acct.PhoneNumberID,
			"token_source", acct.TokenSource)
	}

	msgBus := bus.New()
	svc := service.New(runtime, msgBus, states)

	// Hot-reload config so account/policy edits apply without restart.
	if err := config.Watch(ctx, cfgPath, cfg, nil); err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	}

	go svc.RunOutbound(ctx)

	server := webhook.NewServer(
		cfg.Gateway.Host, cfg.Gateway.Port, cfg.Gateway.WebhookPath,
		svc, cfg.Gateway.RateLimitRPM)
	if err := server.Start(ctx); err != nil {
		slog.Error("webhook server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("shutdown complete")
}

// openChatStateStore picks the storage backend: Postgres when a DSN is
// provided, SQLite when a path is set, memory otherwise.
func openChatStateStore(cfg *config.Config) (store.ChatStateStore, error) {
	if cfg.Database.PostgresDSN != "" {
		slog.Info("chat state backend", "driver", "postgres")
		return store.NewPGStore(cfg.Database.PostgresDSN)
	}
	if cfg.Database.SQLitePath != "" {
		path := config.ExpandHome(cfg.Database.SQLitePath)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		slog.Info("chat state backend", "driver", "sqlite", "path", path)
		return store.NewSQLiteStore(path)
	}
	slog.Info("chat state backend", "driver", "memory")
	return store.NewMemoryStore(), nil
}
