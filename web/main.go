package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devilmonastery/projectboard/internal/config"
	"github.com/devilmonastery/projectboard/internal/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	configPath    string
	logLevel      string
	logFile       string
	logToStderr   bool
	alsoLogStderr bool
	logFormat     string

	cfg       *config.Config
	logCloser io.Closer
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "board",
		Short:         "Project board web service",
		Long:          "Bulletin board with articles, threaded comments and hashtags, plus admin commands for its database",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			opts.cfg = cfg
			return opts.setupLogging(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (optional)")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	flags.BoolVar(&opts.logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	flags.BoolVar(&opts.alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	flags.StringVar(&opts.logFormat, "log-format", "json", "Log format (text, json)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newUserCommand(opts),
		newSeedCommand(opts),
		newArticleCommand(opts),
	)

	return cmd
}

// setupLogging configures the global logger. Flags given on the command line
// win over the logging section of the config file.
func (o *rootOptions) setupLogging(cmd *cobra.Command) error {
	flags := cmd.Flags()
	level, format, file := o.logLevel, o.logFormat, o.logFile
	if !flags.Changed("log-level") && o.cfg.Logging.Level != "" {
		level = o.cfg.Logging.Level
	}
	if !flags.Changed("log-format") && o.cfg.Logging.Format != "" {
		format = o.cfg.Logging.Format
	}
	if !flags.Changed("log-file") {
		file = o.cfg.Logging.File
	}

	logToStderr := o.logToStderr
	if file == "" {
		logToStderr = true
	}

	globalLogger, closer, err := logger.SetupLogger(logger.Config{
		Level:         logger.ParseLevel(level),
		LogFile:       file,
		LogToStderr:   logToStderr,
		AlsoLogStderr: o.alsoLogStderr,
		Format:        format,
	})
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	slog.SetDefault(globalLogger)
	o.logCloser = closer
	return nil
}
