package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zl "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"llmcord/internal/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	log        zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "llmcord",
		Short:         "Serve a local language model to chat users",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.log = l
			zl.Logger = l
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", envStr("LLMCORD_CONFIG", "config.toml"), "Config file (.toml, .yaml, .json); env LLMCORD_CONFIG")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", envStr("LLMCORD_LOG_LEVEL", "info"), "Log level: trace|debug|info|warn|error; env LLMCORD_LOG_LEVEL")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", envStr("LLMCORD_LOG_FORMAT", "console"), "Log format: console|json; env LLMCORD_LOG_FORMAT")

	root.AddCommand(newServeCmd(opts), newConfigCmd(opts), newCommandsCmd(opts), newModelsCmd(opts))
	return root
}

// newLogger builds the process logger.
func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q", level)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	switch strings.ToLower(format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format %q", format)
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// loadConfig reads the config file, falling back to defaults when it does not exist.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Env helpers
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma-separated list, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
