package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/blackhole/internal/pkg/logger"
)

// Global logging flags
var (
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	var serverURL string

	rootCmd := &cobra.Command{
		Use:           "blackhole",
		Short:         "CLI for the Black Hole chat engine",
		Long:          `A command line interface for posting to and inspecting a Black Hole server over its HTTP API.`,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors (main.go handles it)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(); err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServerURL(), "Base URL of the engine server")

	// Logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	rootCmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	rootCmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")

	client := func() *Client { return NewClient(serverURL) }

	rootCmd.AddCommand(newPostCommand(client))
	rootCmd.AddCommand(newFeedCommand(client))
	rootCmd.AddCommand(newGroupsCommand(client))
	rootCmd.AddCommand(newTopCommand(client))
	rootCmd.AddCommand(newPurgeCommand(client))
	rootCmd.AddCommand(newIdentityCommand(client))

	return rootCmd
}

func defaultServerURL() string {
	if url := os.Getenv("BLACKHOLE_SERVER"); url != "" {
		return url
	}
	return "http://localhost:8080"
}

// setupLogging configures the global logger from the CLI flags
func setupLogging() error {
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
	slog.SetDefault(globalLogger)
	return nil
}
