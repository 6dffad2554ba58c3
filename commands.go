package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lunch-telegram/backend"
	"lunch-telegram/bot"
	"lunch-telegram/config"
	"lunch-telegram/db"
	"lunch-telegram/health"
	"lunch-telegram/logger"
	"lunch-telegram/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	EnvFile string
	Verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "lunch-telegram",
		Short:         "Telegram client for the daily lunch menu",
		Long:          "Runs a Telegram bot that lets users browse today's lunch menu, order, and (for admins) publish dishes.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "env file to load (default .env)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (forces debug logging)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the session store schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), opts, cmd)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "lunch-telegram", version)
		},
	}
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	var files []string
	if opts.EnvFile != "" {
		files = append(files, opts.EnvFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func runMigrate(ctx context.Context, opts *rootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Session.Store == config.SessionStoreSQLite {
		sqlDB, err := db.OpenSQLite(cfg.Session.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		defer sqlDB.Close()
		fmt.Fprintln(cmd.OutOrStdout(), "SQLite session store ready:", cfg.Session.SQLitePath)
		return nil
	}

	if err := db.Init(ctx, cfg.DB); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()
	if err := applyMigrations(ctx, logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
	return nil
}

// openSlotStore connects the configured session store and returns its
// health check and a close function.
func openSlotStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (services.SlotStore, health.Check, func(), error) {
	if cfg.Session.Store == config.SessionStoreSQLite {
		sqlDB, err := db.OpenSQLite(cfg.Session.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		return services.NewSQLiteSlots(sqlDB), sqlDB.PingContext, func() { sqlDB.Close() }, nil
	}

	if err := db.Init(ctx, cfg.DB); err != nil {
		return nil, nil, nil, fmt.Errorf("db: %w", err)
	}
	if cfg.AutoMigrate {
		if err := applyMigrations(ctx, log); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return services.NewPostgresSlots(db.Pool), db.Pool.Ping, db.Close, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return errors.New("TOKEN not set")
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slots, storeCheck, closeStore, err := openSlotStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	api.Debug = opts.Verbose

	client := backend.New(cfg.Backend.URL, &http.Client{}, log)
	b := bot.New(api, client, slots, bot.Options{
		AdminRole:   cfg.AdminRole,
		DefaultLang: cfg.DefaultLang,
		Logger:      log,
	})
	if err := b.SetCommands(); err != nil {
		log.Warn("set bot commands failed", "error", err)
	}

	if cfg.Health.Addr != "" {
		h := health.NewHandler(log, version, map[string]health.Check{"session_store": storeCheck})
		go func() {
			if err := health.Serve(ctx, cfg.Health.Addr, h, log); err != nil {
				log.Error("health endpoint stopped", "error", err)
			}
		}()
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	log.Info("bot started",
		"username", api.Self.UserName,
		"backend", cfg.Backend.URL,
		"session_store", cfg.Session.Store,
	)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	b.Run(ctx, updates)
	log.Info("bot stopped")
	return nil
}
