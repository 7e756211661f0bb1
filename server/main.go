package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/devilmonastery/blackhole/internal/config"
	"github.com/devilmonastery/blackhole/internal/domain/entities"
	"github.com/devilmonastery/blackhole/internal/domain/services"
	"github.com/devilmonastery/blackhole/internal/infrastructure/database/postgres"
	"github.com/devilmonastery/blackhole/internal/infrastructure/realtime"
	"github.com/devilmonastery/blackhole/internal/pkg/idgen"
	"github.com/devilmonastery/blackhole/internal/pkg/logger"
	"github.com/devilmonastery/blackhole/migrations"
	"github.com/devilmonastery/blackhole/server/internal/http/handlers"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath    string
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Black Hole chat engine server",
		Long:  "The group and purge lifecycle engine behind the Black Hole campus chat",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	// Add logging flags
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	// Add subcommands
	cmd.AddCommand(newSweepCommand(&configPath))

	return cmd
}

// newSweepCommand runs one lifecycle sweep and exits. Useful for
// one-off cleanup and for cron-style deployments without the resident
// scheduler.
func newSweepCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one lifecycle sweep and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := idgen.Initialize(1); err != nil {
				return fmt.Errorf("failed to initialize ID generator: %w", err)
			}

			pgConn, err := connectWithRetry(cfg.Database.Postgres.ConnectionString(), slog.Default())
			if err != nil {
				return err
			}
			defer pgConn.Close()
			if err := pgConn.RunMigrations(migrations.FS); err != nil {
				return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
			}

			purgeService := services.NewPurgeService(
				postgres.NewMessageRepository(pgConn.DB),
				postgres.NewGroupRepository(pgConn.DB),
				slog.Default(),
			)
			purgeService.SetInactivityTimeout(cfg.Engine.GroupInactivityTimeout())
			purgeService.SweepAll(cmd.Context(), cfg.Engine.Communities)
			return nil
		},
	}
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	// Default to stderr logging unless file is specified
	if logFile == "" {
		logToStderr = true
	}

	cfg := logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger
	slog.SetDefault(globalLogger)

	return nil
}

// connectWithRetry connects to PostgreSQL with exponential backoff so a
// pod can come up before its database does.
func connectWithRetry(connString string, log *slog.Logger) (*postgres.Connection, error) {
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		pgConn, err := postgres.NewConnection(connString)
		if err == nil {
			log.Info("Successfully connected to PostgreSQL")
			return pgConn, nil
		}

		if i == maxRetries-1 {
			return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, err)
		}
		log.Warn("Failed to connect to PostgreSQL",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err,
			"retry_delay", retryDelay)
		time.Sleep(retryDelay)
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}
	return nil, fmt.Errorf("unreachable")
}

func runServer(configPath string) error {
	log := slog.Default().With("component", "server")
	log.Info("Starting server initialization")

	// Initialize Snowflake ID generator
	if err := idgen.Initialize(1); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Info("Initializing PostgreSQL database",
		"user", cfg.Database.Postgres.User,
		"host", cfg.Database.Postgres.Host,
		"database", cfg.Database.Postgres.Database)

	connString := cfg.Database.Postgres.ConnectionString()
	pgConn, err := connectWithRetry(connString, log)
	if err != nil {
		return err
	}
	defer pgConn.Close()

	// Run migrations
	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	// Initialize PostgreSQL repositories
	messageRepo := postgres.NewMessageRepository(pgConn.DB)
	groupRepo := postgres.NewGroupRepository(pgConn.DB)
	profileRepo := postgres.NewProfileRepository(pgConn.DB)

	// Initialize services
	groupService := services.NewGroupService(groupRepo)
	messageService := services.NewMessageService(messageRepo, profileRepo, groupService, slog.Default())
	messageService.SetConfessionLimit(cfg.Engine.ConfessionDailyLimit)
	reactionService := services.NewReactionService(messageRepo, profileRepo, slog.Default())
	reactionService.SetFlagThreshold(cfg.Engine.FlagThreshold)
	purgeService := services.NewPurgeService(messageRepo, groupRepo, slog.Default())
	purgeService.SetInactivityTimeout(cfg.Engine.GroupInactivityTimeout())
	identityService := services.NewIdentityService(slog.Default())
	presenceService := services.NewPresenceService()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the lifecycle sweeper
	go func() {
		if err := purgeService.Run(ctx, cfg.Engine.SweepCron, cfg.Engine.Communities); err != nil && ctx.Err() == nil {
			log.Error("Lifecycle sweeper stopped", "error", err)
			stop()
		}
	}()

	// Bridge database change notifications into the in-process feed
	feed := realtime.NewHub()
	listener, err := realtime.NewListener(connString, feed, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to start change listener: %w", err)
	}
	go listener.Run(ctx)

	// Rotate the resident persona at every purge boundary and tell
	// subscribers, so clients refresh their identities with the purge.
	identityService.Schedule(ctx, func(id entities.Identity) {
		log.Info("persona rotated", "display_name", id.DisplayName)
		for _, community := range cfg.Engine.Communities {
			feed.Publish(realtime.Event{
				Table:     "identity",
				Event:     realtime.EventUpdate,
				Community: community,
			})
		}
	})

	// Build the HTTP API
	handler := handlers.NewHandler(
		messageService, groupService, reactionService, purgeService,
		identityService, presenceService, profileRepo, feed, slog.Default())
	router := mux.NewRouter()
	handler.Routes(router)

	address := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	httpServer := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // event streams stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}
