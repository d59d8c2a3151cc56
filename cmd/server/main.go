package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/article-engagement-api/internal/api"
	"github.com/article-engagement-api/internal/config"
	"github.com/article-engagement-api/internal/database"
	"github.com/article-engagement-api/internal/realtime"
	"github.com/article-engagement-api/internal/repository"
	"github.com/article-engagement-api/internal/service"
	"github.com/article-engagement-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "engagement",
		Short:         "Article views, star ratings and comments with live updates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger every command shares
func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			return serve(cfg, log, skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on startup")
	return cmd
}

func serve(cfg *config.Config, log zerolog.Logger, skipMigrations bool) error {
	log.Info().Msg("Starting Article Engagement API server...")

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// Run migrations
	if !skipMigrations {
		if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
			return fmt.Errorf("run database migrations: %w", err)
		}
	}

	// Initialize repositories, hub and services
	repos := repository.New(db)
	hub := realtime.NewHub(log)
	services := service.NewServices(repos, hub, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Relay writes made by other instances
	if cfg.Engagement.ListenerEnabled {
		listener, err := realtime.NewPGListener(cfg.Database.GetDSN(), cfg.Engagement.NotifyChannel, hub, log)
		if err != nil {
			return fmt.Errorf("start change listener: %w", err)
		}
		defer listener.Close()

		go listener.Run(ctx)
		log.Info().Str("channel", cfg.Engagement.NotifyChannel).Msg("Change listener started")
	}

	// Initialize router
	router := api.NewRouter(services, db, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Let queued view increments finish
	services.Views.Stop()

	log.Info().Msg("Server exited gracefully")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withDB(func(db *database.DB, cfg *config.Config, args []string) error {
			return db.RunMigrations(cfg.Server.MigrationsPath)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: withDB(func(db *database.DB, cfg *config.Config, args []string) error {
			return db.MigrateDown(cfg.Server.MigrationsPath)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "to [version]",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: withDB(func(db *database.DB, cfg *config.Config, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return db.MigrateToVersion(cfg.Server.MigrationsPath, uint(version))
		}),
	})

	return cmd
}

// withDB opens the database for a migrate subcommand
func withDB(fn func(db *database.DB, cfg *config.Config, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		return fn(db, cfg, args)
	}
}
