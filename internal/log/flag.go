package log

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"modelviz.dev/modelviz/internal/flags/enum"
)

const (
	FlagLogLevel  = "loglevel"
	FlagLogFormat = "logformat"
)

func RegisterLoggingFlags(cmd *cobra.Command) {
	enum.Var(cmd.PersistentFlags(), FlagLogLevel, []string{
		"info",
		"debug",
		"warn",
		"error",
	}, "set the log level (debug, info, warn, error)")
	enum.Var(cmd.PersistentFlags(), FlagLogFormat, []string{"text", "json"}, "set the log format (text, json)")
}

// GetBaseLogger builds the process logger from the logging flags.
// Logs are written to the command's error stream so they never mix with
// rendered output.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	logLevel, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	format, err := enum.Get(cmd.Flags(), FlagLogFormat)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(handler), nil
}

func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	logLevel, err := enum.Get(cmd.Flags(), FlagLogLevel)
	if err != nil {
		return slog.LevelInfo, err
	}
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", logLevel)
	}
	return level, nil
}
